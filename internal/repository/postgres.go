package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// Querier - общий интерфейс пула соединений и транзакции.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore - реализация TxManager для базы данных.
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore создает новый экземпляр PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Reader возвращает репозитории, работающие напрямую с пулом.
func (s *PostgresStore) Reader() UnitOfWork {
	return postgresUnit{q: s.DB}
}

// WithinTx выполняет fn в транзакции с уровнем изоляции read committed.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error {
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, postgresUnit{q: tx})
	})
}

type postgresUnit struct {
	q Querier
}

func (u postgresUnit) Projects() ProjectRepository   { return NewPostgresProjectRepository(u.q) }
func (u postgresUnit) Proposals() ProposalRepository { return NewPostgresProposalRepository(u.q) }
func (u postgresUnit) Reviews() ReviewRepository     { return NewPostgresReviewRepository(u.q) }
func (u postgresUnit) Skills() SkillRepository       { return NewPostgresSkillRepository(u.q) }

// translateError приводит ошибки драйвера к ошибкам репозитория.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case invalidTextRepresentation:
			// Идентификатор не является корректным UUID, такой записи быть не может.
			return ErrNotFound
		}
	}
	return err
}
