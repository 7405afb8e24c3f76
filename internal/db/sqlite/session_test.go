package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/thebtf/autofocus/pkg/models"
)

func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }

// SessionStoreSuite is a test suite for SessionStore operations.
type SessionStoreSuite struct {
	suite.Suite
	sessionStore *SessionStore
	store        *Store
	cleanup      func()
}

func (s *SessionStoreSuite) SetupTest() {
	s.store, s.cleanup = testStore(s.T())
	s.sessionStore = NewSessionStore(s.store)
}

func (s *SessionStoreSuite) TearDownTest() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

// TestCreate_TableDriven tests session creation with various inputs.
func (s *SessionStoreSuite) TestCreate_TableDriven() {
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateSessionRequest
	}{
		{
			name: "full session",
			req: models.CreateSessionRequest{
				ProjectName:        "thesis",
				ProjectDescription: strPtr("Writing a distributed systems thesis"),
				Mode:               models.ModeGuardrail,
				DurationMinutes:    int64Ptr(90),
			},
		},
		{
			name: "no description or duration",
			req: models.CreateSessionRequest{
				ProjectName: "inbox-zero",
				Mode:        models.ModeNudge,
			},
		},
		{
			name: "unicode project name",
			req: models.CreateSessionRequest{
				ProjectName: "项目-プロジェクト",
				Mode:        models.ModeMonk,
			},
		},
		{
			name: "preseeded distraction count",
			req: models.CreateSessionRequest{
				ProjectName:         "refactor",
				Mode:                models.ModeNudge,
				DistractionsBlocked: 3,
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			before := time.Now()
			sess, err := s.sessionStore.Create(ctx, tt.req)
			s.Require().NoError(err)
			s.Require().NotNil(sess)

			s.Greater(sess.ID, int64(0))
			s.Equal(tt.req.ProjectName, sess.ProjectName)
			s.Equal(tt.req.Mode, sess.Mode)
			s.Equal(tt.req.DistractionsBlocked, sess.DistractionsBlocked)
			s.False(sess.EndTime.Valid)
			s.WithinDuration(before, sess.StartTime, 5*time.Second)

			if tt.req.ProjectDescription != nil {
				s.True(sess.ProjectDescription.Valid)
				s.Equal(*tt.req.ProjectDescription, sess.ProjectDescription.String)
			} else {
				s.False(sess.ProjectDescription.Valid)
			}
			if tt.req.DurationMinutes != nil {
				s.True(sess.DurationMinutes.Valid)
				s.Equal(*tt.req.DurationMinutes, sess.DurationMinutes.Int64)
			}
		})
	}
}

// TestGetByID_Missing tests the nil, nil contract for unknown ids.
func (s *SessionStoreSuite) TestGetByID_Missing() {
	sess, err := s.sessionStore.GetByID(context.Background(), 9999)
	s.NoError(err)
	s.Nil(sess)
}

// TestEnd tests ending a session exactly once.
func (s *SessionStoreSuite) TestEnd() {
	ctx := context.Background()

	sess, err := s.sessionStore.Create(ctx, models.CreateSessionRequest{
		ProjectName: "end-test", Mode: models.ModeNudge,
	})
	s.Require().NoError(err)

	ended, err := s.sessionStore.End(ctx, sess.ID)
	s.NoError(err)
	s.True(ended)

	got, err := s.sessionStore.GetByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.True(got.EndTime.Valid)
	s.False(got.EndTime.Time.Before(got.StartTime))
	firstEnd := got.EndTime.Time

	// Second attempt finds no active session; end_time is immutable
	ended, err = s.sessionStore.End(ctx, sess.ID)
	s.NoError(err)
	s.False(ended)

	got, err = s.sessionStore.GetByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(firstEnd, got.EndTime.Time)
}

// TestEnd_UnknownID tests ending a session that never existed.
func (s *SessionStoreSuite) TestEnd_UnknownID() {
	ended, err := s.sessionStore.End(context.Background(), 424242)
	s.NoError(err)
	s.False(ended)
}

// TestSetDistractions tests the overwrite semantics of the counter.
func (s *SessionStoreSuite) TestSetDistractions() {
	ctx := context.Background()

	sess, err := s.sessionStore.Create(ctx, models.CreateSessionRequest{
		ProjectName: "counter-test", Mode: models.ModeGuardrail,
	})
	s.Require().NoError(err)

	s.NoError(s.sessionStore.SetDistractions(ctx, sess.ID, 7))

	got, err := s.sessionStore.GetByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(int64(7), got.DistractionsBlocked)

	// Overwrite with a LOWER value succeeds: the counter is a
	// replacement, not an increment. Current intentional behavior.
	s.NoError(s.sessionStore.SetDistractions(ctx, sess.ID, 2))

	got, err = s.sessionStore.GetByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), got.DistractionsBlocked)
}

// TestSetDistractions_UnknownID tests the silent no-op for missing ids.
func (s *SessionStoreSuite) TestSetDistractions_UnknownID() {
	err := s.sessionStore.SetDistractions(context.Background(), 424242, 5)
	s.NoError(err)
}

// TestList tests ordering and pagination.
func (s *SessionStoreSuite) TestList() {
	ctx := context.Background()

	names := []string{"first", "second", "third"}
	for _, name := range names {
		_, err := s.sessionStore.Create(ctx, models.CreateSessionRequest{
			ProjectName: name, Mode: models.ModeNudge,
		})
		s.Require().NoError(err)
		time.Sleep(2 * time.Millisecond)
	}

	sessions, err := s.sessionStore.List(ctx, 50, 0)
	s.Require().NoError(err)
	s.Require().Len(sessions, 3)

	// Newest creation first
	s.Equal("third", sessions[0].ProjectName)
	s.Equal("second", sessions[1].ProjectName)
	s.Equal("first", sessions[2].ProjectName)

	// Pagination
	page, err := s.sessionStore.List(ctx, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("second", page[0].ProjectName)
}

// TestListSince tests the trailing-window filter used by analytics.
func (s *SessionStoreSuite) TestListSince() {
	ctx := context.Background()

	sess, err := s.sessionStore.Create(ctx, models.CreateSessionRequest{
		ProjectName: "recent", Mode: models.ModeNudge,
	})
	s.Require().NoError(err)

	// Backdate a second session past the window
	const backdate = `
		UPDATE focus_sessions
		SET created_at_epoch = ?, start_time_epoch = ?
		WHERE id = ?
	`
	old, err := s.sessionStore.Create(ctx, models.CreateSessionRequest{
		ProjectName: "ancient", Mode: models.ModeNudge,
	})
	s.Require().NoError(err)
	oldEpoch := time.Now().AddDate(0, 0, -30).UnixMilli()
	_, err = s.store.ExecContext(ctx, backdate, oldEpoch, oldEpoch, old.ID)
	s.Require().NoError(err)

	weekAgo := time.Now().AddDate(0, 0, -7)
	sessions, err := s.sessionStore.ListSince(ctx, weekAgo)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(sess.ID, sessions[0].ID)
}
