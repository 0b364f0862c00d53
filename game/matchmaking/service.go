package matchmaking

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/arenahub/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RatingDelta is the fixed rating transfer per reported result: the winner
// gains this much and the loser drops by the same amount. No floor, so a
// rating can go negative.
const RatingDelta = 25

var (
	ErrNotFound       = errors.New("matchmaking: user not found")
	ErrMatchNotFound  = errors.New("matchmaking: match not found")
	ErrMatchResolved  = errors.New("matchmaking: result already recorded")
	ErrNotParticipant = errors.New("matchmaking: not a participant")
)

// snapshot is persisted into Match.Snapshot at pairing time.
type snapshot struct {
	Player1Rating int `json:"p1_rating"`
	Player2Rating int `json:"p2_rating"`
}

// Service owns the waiting queue and match records. Pairing is strictly
// FIFO on join time; there is no rating-band search.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Enqueue puts the user in the queue, capturing their current rating and
// join time. A user already waiting is re-enqueued at the back.
func (s *Service) Enqueue(username string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var acc model.Account
		if err := tx.Where("username = ?", username).First(&acc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("username = ?", username).
			Delete(&model.QueueEntry{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.QueueEntry{
			Username: username,
			Rating:   acc.Rating,
			JoinedAt: time.Now(),
		}).Error
	})
}

// Leave removes the user's queue entry, if any.
func (s *Service) Leave(username string) error {
	return s.db.Where("username = ?", username).Delete(&model.QueueEntry{}).Error
}

// TryPair removes the two oldest queue entries and records a match between
// them. Returns nil when fewer than two players are waiting.
func (s *Service) TryPair() (*model.Match, error) {
	var match *model.Match
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entries []model.QueueEntry
		if err := tx.Order("joined_at ASC, id ASC").Limit(2).
			Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) < 2 {
			return nil
		}

		if err := tx.Delete(&model.QueueEntry{},
			[]int64{entries[0].ID, entries[1].ID}).Error; err != nil {
			return err
		}

		snap, err := json.Marshal(snapshot{
			Player1Rating: entries[0].Rating,
			Player2Rating: entries[1].Rating,
		})
		if err != nil {
			return err
		}
		m := &model.Match{
			Player1:  entries[0].Username,
			Player2:  entries[1].Username,
			Snapshot: snap,
		}
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		match = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if match != nil {
		s.logger.Info("match paired",
			zap.Int64("match_id", match.ID),
			zap.String("player1", match.Player1),
			zap.String("player2", match.Player2),
		)
	}
	return match, nil
}

// Get returns a match by ID.
func (s *Service) Get(matchID int64) (*model.Match, error) {
	var m model.Match
	if err := s.db.First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ReportResult records the winner of a specific match and moves RatingDelta
// points from the loser to the winner. The match must be unresolved and the
// winner one of its participants; resolving a match is a one-shot operation.
func (s *Service) ReportResult(matchID int64, winner string) (*model.Match, error) {
	var match *model.Match
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var m model.Match
		if err := tx.First(&m, matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if m.Resolved() {
			return ErrMatchResolved
		}

		var loser string
		switch winner {
		case m.Player1:
			loser = m.Player2
		case m.Player2:
			loser = m.Player1
		default:
			return ErrNotParticipant
		}

		now := time.Now()
		if err := tx.Model(&m).Updates(map[string]interface{}{
			"winner":      winner,
			"resolved_at": now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Account{}).Where("username = ?", winner).
			UpdateColumn("rating", gorm.Expr("rating + ?", RatingDelta)).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Account{}).Where("username = ?", loser).
			UpdateColumn("rating", gorm.Expr("rating - ?", RatingDelta)).Error; err != nil {
			return err
		}

		match = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
