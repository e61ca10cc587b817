package auth

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/snapplace/server/internal/database"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Code is one issued verification code. Codes are single-use but issuing a
// new one does not invalidate earlier ones; any unexpired unused code for the
// user is accepted.
type Code struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// GenerateCode returns a random 6-digit code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// ClassifyCodes decides the outcome of a verification attempt given every
// code row matching (user, code). Outcomes are checked in a fixed order so
// the caller's error message reflects the most favorable interpretation:
// a live code wins outright, then expiry, then re-use, then not-found.
func ClassifyCodes(codes []Code, now time.Time) (*Code, error) {
	for i := range codes {
		c := &codes[i]
		if !c.Used && now.Before(c.ExpiresAt) {
			return c, nil
		}
	}

	for i := range codes {
		c := &codes[i]
		if !c.Used && !now.Before(c.ExpiresAt) {
			return nil, ErrCodeExpired
		}
	}

	for i := range codes {
		if codes[i].Used {
			return nil, ErrCodeAlreadyUsed
		}
	}

	return nil, ErrCodeNotFound
}

// CodeRepository persists verification codes.
type CodeRepository struct {
	db *bun.DB
}

func NewCodeRepository(db *bun.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

// Issue generates and stores a fresh code for the user, valid for ttl.
func (r *CodeRepository) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Code, error) {
	value, err := GenerateCode()
	if err != nil {
		return nil, err
	}

	dbCode := &database.TwoFactorCode{
		UserID:    userID,
		Code:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	_, err = r.db.NewInsert().
		Model(dbCode).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return mapDBCodeToModel(dbCode), nil
}

// FindByUserAndCode returns every row matching the (user, code) pair, used
// and expired ones included. Classification happens in ClassifyCodes.
func (r *CodeRepository) FindByUserAndCode(ctx context.Context, userID uuid.UUID, code string) ([]Code, error) {
	var dbCodes []database.TwoFactorCode

	err := r.db.NewSelect().
		Model(&dbCodes).
		Where("tfc.user_id = ?", userID).
		Where("tfc.code = ?", code).
		Order("tfc.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]Code, len(dbCodes))
	for i := range dbCodes {
		codes[i] = *mapDBCodeToModel(&dbCodes[i])
	}

	return codes, nil
}

// Consume marks a code as used. Used rows stay in the table as an audit
// trail of verification attempts.
func (r *CodeRepository) Consume(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewUpdate().
		Model((*database.TwoFactorCode)(nil)).
		Set("used = true").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCodeNotFound
	}

	return nil
}

func mapDBCodeToModel(c *database.TwoFactorCode) *Code {
	return &Code{
		ID:        c.ID,
		UserID:    c.UserID,
		Code:      c.Code,
		ExpiresAt: c.ExpiresAt,
		Used:      c.Used,
		CreatedAt: c.CreatedAt,
	}
}
