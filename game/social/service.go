package social

import (
	"errors"
	"time"

	"github.com/arenahub/server/game/presence"
	"github.com/arenahub/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Named rejections. Handlers map these to user-visible messages; anything
// else is a storage failure and aborts the request.
var (
	ErrSelfRequest      = errors.New("social: cannot friend yourself")
	ErrNotFound         = errors.New("social: user not found")
	ErrBlocked          = errors.New("social: blocked by this user")
	ErrAlreadyFriends   = errors.New("social: already friends")
	ErrRequestExists    = errors.New("social: request already pending")
	ErrNoPendingRequest = errors.New("social: no pending request")
)

// Search classifications, mirroring the states a profile lookup can land in.
const (
	ResultSelf        = "self"
	ResultNotFound    = "not_found"
	ResultBlocked     = "blocked"
	ResultFriends     = "friends"
	ResultRequestSent = "request_sent"
	ResultEligible    = "eligible"
)

// FriendInfo is one row of a friends listing.
type FriendInfo struct {
	Username  string `json:"username"`
	Rating    int    `json:"rating"`
	AvatarRef string `json:"avatar_ref"`
	Online    bool   `json:"online"`
}

// Service owns the relationship ledger: friend requests, friendship edges,
// and blocks. All multi-row mutations run inside a transaction.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// SendRequest records a pending request from sender to receiver. The pair
// must be in the "none" state: not self, not blocked, not already friends,
// no request pending in either direction.
func (s *Service) SendRequest(sender, receiver string) error {
	if sender == receiver {
		return ErrSelfRequest
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var accounts int64
		if err := tx.Model(&model.Account{}).Where("username = ?", receiver).Count(&accounts).Error; err != nil {
			return err
		}
		if accounts == 0 {
			return ErrNotFound
		}

		blocked, err := blockExists(tx, receiver, sender)
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlocked
		}

		friends, err := edgeExists(tx, sender, receiver)
		if err != nil {
			return err
		}
		if friends {
			return ErrAlreadyFriends
		}

		var pending int64
		err = tx.Model(&model.FriendRequest{}).
			Where("(sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)",
				sender, receiver, receiver, sender).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return ErrRequestExists
		}

		return tx.Create(&model.FriendRequest{
			Sender:   sender,
			Receiver: receiver,
		}).Error
	})
}

// Accept turns a pending request from sender into a friendship edge. The
// request row is deleted and the edge inserted in one transaction.
// Accepting when already friends is a successful no-op, so a repeated
// accept cannot duplicate the edge or error out.
func (s *Service) Accept(receiver, sender string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		friends, err := edgeExists(tx, sender, receiver)
		if err != nil {
			return err
		}
		if friends {
			// Sweep any leftover request row.
			return tx.Where("sender = ? AND receiver = ?", sender, receiver).
				Delete(&model.FriendRequest{}).Error
		}

		res := tx.Where("sender = ? AND receiver = ?", sender, receiver).
			Delete(&model.FriendRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoPendingRequest
		}

		low, high := model.CanonicalPair(sender, receiver)
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Friendship{UserLow: low, UserHigh: high}).Error
	})
}

// Decline deletes a pending request from sender without creating an edge.
func (s *Service) Decline(receiver, sender string) error {
	res := s.db.Where("sender = ? AND receiver = ?", sender, receiver).
		Delete(&model.FriendRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// RemoveFriend deletes the friendship edge. No-op if the pair is not friends.
func (s *Service) RemoveFriend(user, friend string) error {
	low, high := model.CanonicalPair(user, friend)
	return s.db.Where("user_low = ? AND user_high = ?", low, high).
		Delete(&model.Friendship{}).Error
}

// Block inserts a block row and severs the pair: the friendship edge and
// any pending requests in either direction are removed atomically. There
// is no unblock.
func (s *Service) Block(blocker, blocked string) error {
	if blocker == blocked {
		return ErrSelfRequest
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Block{Blocker: blocker, Blocked: blocked}).Error; err != nil {
			return err
		}

		low, high := model.CanonicalPair(blocker, blocked)
		if err := tx.Where("user_low = ? AND user_high = ?", low, high).
			Delete(&model.Friendship{}).Error; err != nil {
			return err
		}

		return tx.Where("(sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)",
			blocker, blocked, blocked, blocker).
			Delete(&model.FriendRequest{}).Error
	})
}

// ListFriends returns the user's friends with presence, rating, and avatar.
func (s *Service) ListFriends(user string) ([]FriendInfo, error) {
	var edges []model.Friendship
	if err := s.db.Where("user_low = ? OR user_high = ?", user, user).
		Find(&edges).Error; err != nil {
		return nil, err
	}

	names := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.UserLow == user {
			names = append(names, e.UserHigh)
		} else {
			names = append(names, e.UserLow)
		}
	}
	if len(names) == 0 {
		return []FriendInfo{}, nil
	}

	var accounts []model.Account
	if err := s.db.Where("username IN ?", names).Find(&accounts).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]FriendInfo, len(accounts))
	for i, acc := range accounts {
		result[i] = FriendInfo{
			Username:  acc.Username,
			Rating:    acc.Rating,
			AvatarRef: acc.AvatarRef,
			Online:    presence.IsOnline(acc.LastActiveAt, now),
		}
	}
	return result, nil
}

// ListIncoming returns usernames with a pending request to the user,
// oldest first.
func (s *Service) ListIncoming(user string) ([]string, error) {
	var reqs []model.FriendRequest
	if err := s.db.Where("receiver = ?", user).
		Order("created_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	senders := make([]string, len(reqs))
	for i, r := range reqs {
		senders[i] = r.Sender
	}
	return senders, nil
}

// Search classifies name from the searcher's perspective. The checks run in
// the same order the friends page presents them: self, existence, block,
// friendship, pending request, then eligible to add.
func (s *Service) Search(me, name string) (string, error) {
	if name == me {
		return ResultSelf, nil
	}

	var accounts int64
	if err := s.db.Model(&model.Account{}).Where("username = ?", name).Count(&accounts).Error; err != nil {
		return "", err
	}
	if accounts == 0 {
		return ResultNotFound, nil
	}

	blocked, err := blockExists(s.db, name, me)
	if err != nil {
		return "", err
	}
	if blocked {
		return ResultBlocked, nil
	}

	friends, err := edgeExists(s.db, me, name)
	if err != nil {
		return "", err
	}
	if friends {
		return ResultFriends, nil
	}

	var pending int64
	if err := s.db.Model(&model.FriendRequest{}).
		Where("sender = ? AND receiver = ?", me, name).
		Count(&pending).Error; err != nil {
		return "", err
	}
	if pending > 0 {
		return ResultRequestSent, nil
	}

	return ResultEligible, nil
}

func edgeExists(tx *gorm.DB, a, b string) (bool, error) {
	low, high := model.CanonicalPair(a, b)
	var n int64
	err := tx.Model(&model.Friendship{}).
		Where("user_low = ? AND user_high = ?", low, high).
		Count(&n).Error
	return n > 0, err
}

func blockExists(tx *gorm.DB, blocker, blocked string) (bool, error) {
	var n int64
	err := tx.Model(&model.Block{}).
		Where("blocker = ? AND blocked = ?", blocker, blocked).
		Count(&n).Error
	return n > 0, err
}
