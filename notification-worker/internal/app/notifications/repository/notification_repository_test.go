package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"spectre/notification-worker/internal/app/notifications/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type NotificationRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  NotificationRepository
	sqlDB *sql.DB
}

func TestNotificationRepositorySuite(t *testing.T) {
	suite.Run(t, new(NotificationRepositoryTestSuite))
}

func (s *NotificationRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewNotificationRepository(s.db)
}

func (s *NotificationRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== CreateBatch =====================

func (s *NotificationRepositoryTestSuite) TestCreateBatch_AssignsIDAndPendingStatus() {
	n := &entity.Notification{
		EventID:   "evt-1",
		QuoteID:   "q-1",
		Kind:      entity.KindQuoteSent,
		Recipient: "marie@example.com",
		Subject:   "Votre soumission",
		Body:      "<p>Bonjour</p>",
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	err := s.repo.CreateBatch(context.Background(), []*entity.Notification{n})

	s.NoError(err)
	s.NotEqual(uuid.Nil, n.ID)
	s.Equal(entity.NotificationStatusPending, n.Status)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *NotificationRepositoryTestSuite) TestCreateBatch_OneTransactionForAll() {
	batch := []*entity.Notification{
		{EventID: "evt-1", Kind: entity.KindQuoteReceivedAdmin, Recipient: "admin@example.com"},
		{EventID: "evt-1", Kind: entity.KindQuoteReceivedCustomer, Recipient: "marie@example.com"},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	err := s.repo.CreateBatch(context.Background(), batch)

	s.NoError(err)
	s.NotEqual(batch[0].ID, batch[1].ID)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *NotificationRepositoryTestSuite) TestCreateBatch_SecondInsertFailsRollsBackFirst() {
	batch := []*entity.Notification{
		{EventID: "evt-1", Kind: entity.KindQuoteReceivedAdmin, Recipient: "admin@example.com"},
		{EventID: "evt-1", Kind: entity.KindQuoteReceivedCustomer, Recipient: "marie@example.com"},
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnError(errors.New("connection reset"))
	s.mock.ExpectRollback()

	err := s.repo.CreateBatch(context.Background(), batch)

	s.Error(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *NotificationRepositoryTestSuite) TestCreateBatch_DatabaseError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnError(errors.New("connection refused"))
	s.mock.ExpectRollback()

	err := s.repo.CreateBatch(context.Background(), []*entity.Notification{{Kind: entity.KindQuoteSent}})

	s.Error(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== MarkSent / MarkFailed =====================

func (s *NotificationRepositoryTestSuite) TestMarkSent() {
	id := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.MarkSent(context.Background(), id))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *NotificationRepositoryTestSuite) TestMarkFailed_IncrementsAttempts() {
	id := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`UPDATE "notifications" SET .*"attempts"=attempts \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.MarkFailed(context.Background(), id, "dial tcp: timeout"))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *NotificationRepositoryTestSuite) TestMarkFailed_NotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.MarkFailed(context.Background(), uuid.New(), "boom")

	s.ErrorIs(err, ErrNotificationNotFound)
}

// ===================== ListRetryable =====================

func (s *NotificationRepositoryTestSuite) TestListRetryable() {
	id := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "event_id", "quote_id", "kind", "recipient", "subject", "body", "status", "attempts", "last_error", "created_at", "updated_at"}).
		AddRow(id.String(), "evt-1", "q-1", entity.KindQuoteSent, "marie@example.com", "Sujet", "<p>x</p>", "failed", 2, "timeout", now, now)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notifications" WHERE status = $1 AND attempts < $2 ORDER BY created_at ASC`)).
		WillReturnRows(rows)

	notifications, err := s.repo.ListRetryable(context.Background(), 5, 50)

	s.Require().NoError(err)
	s.Require().Len(notifications, 1)
	s.Equal(id, notifications[0].ID)
	s.Equal(2, notifications[0].Attempts)
	s.Equal(entity.NotificationStatusFailed, notifications[0].Status)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *NotificationRepositoryTestSuite) TestListRetryable_DatabaseError() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notifications"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.repo.ListRetryable(context.Background(), 5, 50)

	s.Error(err)
}
