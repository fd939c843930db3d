package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"trackivity/config"
	"trackivity/internal/domain/entity"
	"trackivity/internal/domain/repository"
	"trackivity/internal/domain/service"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SessionTTL:    7 * 24 * time.Hour,
			RememberMeTTL: 30 * 24 * time.Hour,
			ScanTokenTTL:  180 * time.Second,
			ResetTokenTTL: 30 * time.Minute,
		},
	}
	cfg.SecretKey.Session = "test-secret"

	return cfg
}

// --- In-memory repository fakes ---

type memUserRepo struct {
	mu             sync.Mutex
	users          map[uuid.UUID]*entity.User
	recordLoginErr error
	loginRecorded  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) put(user *entity.User) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user

	return user
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByStudentID(_ context.Context, studentID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.StudentID == studentID {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByLoginIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	if strings.Contains(identifier, "@") {
		return r.FindByEmail(ctx, identifier)
	}

	return r.FindByStudentID(ctx, identifier)
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) || existing.StudentID == user.StudentID {
			return repository.ErrDuplicateUser
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user

	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user

	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash

	return nil
}

func (r *memUserRepo) RecordLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordLoginErr != nil {
		return r.recordLoginErr
	}
	if user, ok := r.users[id]; ok {
		user.LastLoginAt = &at
		user.LoginCount++
		r.loginRecorded++
	}

	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.CreatedAt = time.Now()
	r.sessions[session.ID] = session

	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		return session, nil
	}

	return nil, repository.ErrSessionNotFound
}

func (r *memSessionRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Session
	for _, session := range r.sessions {
		if session.UserID == userID && session.IsValid(time.Now()) {
			result = append(result, session)
		}
	}

	return result, nil
}

func (r *memSessionRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		session.IsActive = false
	}

	return nil
}

func (r *memSessionRepo) DeactivateAllByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}

	return nil
}

func (r *memSessionRepo) Touch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		now := time.Now()
		session.LastSeenAt = &now
	}

	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if time.Now().After(session.ExpiresAt) {
			delete(r.sessions, id)
		}
	}

	return nil
}

type memActivityRepo struct {
	mu         sync.Mutex
	activities map[uuid.UUID]*entity.Activity
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{activities: make(map[uuid.UUID]*entity.Activity)}
}

func (r *memActivityRepo) put(activity *entity.Activity) *entity.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	r.activities[activity.ID] = activity

	return activity
}

func (r *memActivityRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if activity, ok := r.activities[id]; ok {
		return activity, nil
	}

	return nil, repository.ErrActivityNotFound
}

func (r *memActivityRepo) List(_ context.Context, filter repository.ActivityListFilter) ([]*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Activity
	for _, activity := range r.activities {
		if filter.OrganizationID != nil && activity.OrganizationID != *filter.OrganizationID {
			continue
		}
		if filter.Status != "" && activity.Status != filter.Status {
			continue
		}
		result = append(result, activity)
	}

	return result, nil
}

func (r *memActivityRepo) Create(_ context.Context, activity *entity.Activity) error {
	r.put(activity)
	activity.CreatedAt = time.Now()

	return nil
}

func (r *memActivityRepo) Update(_ context.Context, activity *entity.Activity) error {
	r.put(activity)

	return nil
}

func (r *memActivityRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ActivityStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity, ok := r.activities[id]
	if !ok {
		return repository.ErrActivityNotFound
	}
	activity.Status = status

	return nil
}

type memParticipationRepo struct {
	mu             sync.Mutex
	participations map[string]*entity.Participation
}

func newMemParticipationRepo() *memParticipationRepo {
	return &memParticipationRepo{participations: make(map[string]*entity.Participation)}
}

func participationKey(userID, activityID uuid.UUID) string {
	return userID.String() + "|" + activityID.String()
}

func (r *memParticipationRepo) put(participation *entity.Participation) *entity.Participation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if participation.ID == uuid.Nil {
		participation.ID = uuid.New()
	}
	r.participations[participationKey(participation.UserID, participation.ActivityID)] = participation

	return participation
}

func (r *memParticipationRepo) FindByUserAndActivity(_ context.Context, userID, activityID uuid.UUID) (*entity.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if participation, ok := r.participations[participationKey(userID, activityID)]; ok {
		return participation, nil
	}

	return nil, repository.ErrParticipationNotFound
}

func (r *memParticipationRepo) FindByActivity(_ context.Context, activityID uuid.UUID) ([]*entity.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Participation
	for _, participation := range r.participations {
		if participation.ActivityID == activityID {
			result = append(result, participation)
		}
	}

	return result, nil
}

func (r *memParticipationRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Participation
	for _, participation := range r.participations {
		if participation.UserID == userID {
			result = append(result, participation)
		}
	}

	return result, nil
}

func (r *memParticipationRepo) CountByActivity(_ context.Context, activityID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, participation := range r.participations {
		if participation.ActivityID == activityID {
			count++
		}
	}

	return count, nil
}

func (r *memParticipationRepo) Create(_ context.Context, participation *entity.Participation) error {
	r.mu.Lock()
	key := participationKey(participation.UserID, participation.ActivityID)
	if _, exists := r.participations[key]; exists {
		r.mu.Unlock()

		return repository.ErrDuplicateParticipation
	}
	r.mu.Unlock()
	r.put(participation)

	return nil
}

func (r *memParticipationRepo) Update(_ context.Context, participation *entity.Participation) error {
	r.put(participation)

	return nil
}

type memResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.PasswordResetToken
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{tokens: make(map[string]*entity.PasswordResetToken)}
}

func (r *memResetRepo) Create(_ context.Context, token *entity.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.tokens[token.TokenHash] = token

	return nil
}

func (r *memResetRepo) FindByTokenHash(_ context.Context, tokenHash string) (*entity.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[tokenHash]; ok {
		return token, nil
	}

	return nil, repository.ErrResetTokenNotFound
}

func (r *memResetRepo) MarkUsed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now

			return nil
		}
	}

	return repository.ErrResetTokenNotFound
}

func (r *memResetRepo) InvalidateByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.UserID == userID && token.UsedAt == nil {
			now := time.Now()
			token.UsedAt = &now
		}
	}

	return nil
}

func (r *memResetRepo) DeleteExpired(_ context.Context) error {
	return nil
}

// --- Transaction fake ---

// memFactory hands the shared in-memory repositories back to transactional
// code, so assertions can inspect the same state the service mutated.
type memFactory struct {
	userRepo          repository.UserRepository
	sessionRepo       repository.SessionRepository
	activityRepo      repository.ActivityRepository
	participationRepo repository.ParticipationRepository
	resetRepo         repository.PasswordResetRepository
}

func (f *memFactory) NewUserRepository() repository.UserRepository { return f.userRepo }
func (f *memFactory) NewSessionRepository() repository.SessionRepository {
	return f.sessionRepo
}
func (f *memFactory) NewActivityRepository() repository.ActivityRepository {
	return f.activityRepo
}
func (f *memFactory) NewParticipationRepository() repository.ParticipationRepository {
	return f.participationRepo
}
func (f *memFactory) NewPasswordResetRepository() repository.PasswordResetRepository {
	return f.resetRepo
}

type memTxManager struct {
	factory *memFactory
}

func (tm *memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(tm.factory)
}

// --- Service fakes ---

// stubHasher keeps hashing transparent for assertions.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// stubTokenService hands out deterministic tokens and validates them from
// in-memory tables instead of real signatures.
type stubTokenService struct {
	mu            sync.Mutex
	sessionTokens map[string]*service.SessionClaims
	scanTokens    map[string]*service.ScanClaims
	scanErrs      map[string]error
	sessionTTL    time.Duration
	rememberTTL   time.Duration
	scanTTL       time.Duration
}

func newStubTokenService() *stubTokenService {
	return &stubTokenService{
		sessionTokens: make(map[string]*service.SessionClaims),
		scanTokens:    make(map[string]*service.ScanClaims),
		scanErrs:      make(map[string]error),
		sessionTTL:    7 * 24 * time.Hour,
		rememberTTL:   30 * 24 * time.Hour,
		scanTTL:       180 * time.Second,
	}
}

func (s *stubTokenService) GenerateSessionToken(user *entity.User, sessionID string, _ time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "session-token-" + sessionID
	s.sessionTokens[token] = &service.SessionClaims{
		UserID:    user.ID,
		SessionID: sessionID,
	}

	return token, nil
}

func (s *stubTokenService) ValidateSessionToken(tokenString string) (*service.SessionClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claims, ok := s.sessionTokens[tokenString]; ok {
		return claims, nil
	}

	return nil, service.ErrTokenMalformed
}

func (s *stubTokenService) GenerateScanToken(userID uuid.UUID, sessionID string) (string, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jti := uuid.New()
	token := "scan-token-" + jti.String()
	claims := &service.ScanClaims{
		UserID:    userID,
		SessionID: sessionID,
	}
	claims.ID = jti.String()
	s.scanTokens[token] = claims

	return token, time.Now().Add(s.scanTTL), nil
}

func (s *stubTokenService) ValidateScanToken(tokenString string) (*service.ScanClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.scanErrs[tokenString]; ok {
		return nil, err
	}
	if claims, ok := s.scanTokens[tokenString]; ok {
		return claims, nil
	}

	return nil, service.ErrTokenMalformed
}

func (s *stubTokenService) SessionDuration(rememberMe bool) time.Duration {
	if rememberMe {
		return s.rememberTTL
	}

	return s.sessionTTL
}

// scanTokenFor registers a valid scan token for the given user.
func (s *stubTokenService) scanTokenFor(userID uuid.UUID) string {
	token, _, _ := s.GenerateScanToken(userID, uuid.New().String())

	return token
}

// failScanToken registers a token that fails validation with err.
func (s *stubTokenService) failScanToken(err error) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := "bad-scan-token-" + uuid.New().String()
	s.scanErrs[token] = err

	return token
}
