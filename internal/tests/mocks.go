package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
	"carpool/internal/service"
)

// ──────────────────────────────────────────────
// IN-MEMORY TRANSACTIONAL STORE
// ──────────────────────────────────────────────

// memoryState holds every table. Transactions clone the whole state and
// swap it back on success, so a failed transaction leaves no trace.
type memoryState struct {
	users             map[string]*domain.User
	roles             map[string]*domain.RoleAssignment
	driverProfiles    map[string]*domain.DriverProfile
	donorProfiles     map[string]*domain.DonorProfile
	passengerProfiles map[string]*domain.PassengerProfile
	rides             map[string]*domain.Ride
	requests          map[string]*domain.PassengerRequest
	chats             map[string]*domain.Chat
	messages          map[string]*domain.Message
	notifications     map[string]*domain.Notification
	donations         map[string]*domain.Donation
	feedback          map[string]*domain.Feedback
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:             make(map[string]*domain.User),
		roles:             make(map[string]*domain.RoleAssignment),
		driverProfiles:    make(map[string]*domain.DriverProfile),
		donorProfiles:     make(map[string]*domain.DonorProfile),
		passengerProfiles: make(map[string]*domain.PassengerProfile),
		rides:             make(map[string]*domain.Ride),
		requests:          make(map[string]*domain.PassengerRequest),
		chats:             make(map[string]*domain.Chat),
		messages:          make(map[string]*domain.Message),
		notifications:     make(map[string]*domain.Notification),
		donations:         make(map[string]*domain.Donation),
		feedback:          make(map[string]*domain.Feedback),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.roles {
		r := *v
		c.roles[k] = &r
	}
	for k, v := range s.driverProfiles {
		p := *v
		c.driverProfiles[k] = &p
	}
	for k, v := range s.donorProfiles {
		p := *v
		c.donorProfiles[k] = &p
	}
	for k, v := range s.passengerProfiles {
		p := *v
		c.passengerProfiles[k] = &p
	}
	for k, v := range s.rides {
		r := *v
		c.rides[k] = &r
	}
	for k, v := range s.requests {
		r := *v
		c.requests[k] = &r
	}
	for k, v := range s.chats {
		ch := *v
		c.chats[k] = &ch
	}
	for k, v := range s.messages {
		m := *v
		c.messages[k] = &m
	}
	for k, v := range s.notifications {
		n := *v
		c.notifications[k] = &n
	}
	for k, v := range s.donations {
		d := *v
		c.donations[k] = &d
	}
	for k, v := range s.feedback {
		f := *v
		c.feedback[k] = &f
	}
	return c
}

func requestKey(rideID, passengerID string) string {
	return rideID + "/" + passengerID
}

// MockStoreErrors injects failures into specific operations. A non-nil
// field makes the corresponding operation fail.
type MockStoreErrors struct {
	UserDelete           error
	RideCreate           error
	RideDelete           error
	RideUpdateStatus     error
	RequestCreate        error
	RequestUpdateStatus  error
	RequestDeleteByRide  error
	NotificationCreate   error
	MessageDeleteByChat  error
	FeedbackDeleteByRide error
}

// MockStore is an in-memory repository.Store. A single mutex serializes
// transactions, which mirrors the row-lock serialization the production
// store gets from the database.
type MockStore struct {
	mu    sync.Mutex
	state *memoryState

	Errors MockStoreErrors
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{state: newMemoryState()}
}

// Within runs fn against a snapshot of the state. The snapshot replaces
// the live state only when fn succeeds.
func (s *MockStore) Within(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &mockTx{repos: s.reposFor(snapshot)}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

func (s *MockStore) reposFor(state *memoryState) mockRepos {
	return mockRepos{
		users:         &mockUserRepo{state: state, errs: &s.Errors},
		roles:         &mockRoleRepo{state: state},
		rides:         &mockRideRepo{state: state, errs: &s.Errors},
		requests:      &mockRequestRepo{state: state, errs: &s.Errors},
		chats:         &mockChatRepo{state: state},
		messages:      &mockMessageRepo{state: state, errs: &s.Errors},
		notifications: &mockNotificationRepo{state: state, errs: &s.Errors},
		donations:     &mockDonationRepo{state: state},
		feedback:      &mockFeedbackRepo{state: state, errs: &s.Errors},
	}
}

type mockRepos struct {
	users         *mockUserRepo
	roles         *mockRoleRepo
	rides         *mockRideRepo
	requests      *mockRequestRepo
	chats         *mockChatRepo
	messages      *mockMessageRepo
	notifications *mockNotificationRepo
	donations     *mockDonationRepo
	feedback      *mockFeedbackRepo
}

type mockTx struct {
	repos mockRepos
}

func (t *mockTx) Users() repository.UserRepository                 { return t.repos.users }
func (t *mockTx) Roles() repository.RoleRepository                 { return t.repos.roles }
func (t *mockTx) Rides() repository.RideRepository                 { return t.repos.rides }
func (t *mockTx) Requests() repository.RequestRepository           { return t.repos.requests }
func (t *mockTx) Chats() repository.ChatRepository                 { return t.repos.chats }
func (t *mockTx) Messages() repository.MessageRepository           { return t.repos.messages }
func (t *mockTx) Notifications() repository.NotificationRepository { return t.repos.notifications }
func (t *mockTx) Donations() repository.DonationRepository         { return t.repos.donations }
func (t *mockTx) Feedback() repository.FeedbackRepository          { return t.repos.feedback }

// Non-transactional reads operate on the live state.
func (s *MockStore) live() mockRepos { return s.reposFor(s.state) }

func (s *MockStore) Users() repository.UserRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().users
}

func (s *MockStore) Roles() repository.RoleRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().roles
}

func (s *MockStore) Rides() repository.RideRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().rides
}

func (s *MockStore) Requests() repository.RequestRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().requests
}

func (s *MockStore) Chats() repository.ChatRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().chats
}

func (s *MockStore) Messages() repository.MessageRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().messages
}

func (s *MockStore) Notifications() repository.NotificationRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().notifications
}

func (s *MockStore) Donations() repository.DonationRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().donations
}

func (s *MockStore) Feedback() repository.FeedbackRepository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live().feedback
}

var _ repository.Store = (*MockStore)(nil)

// ──────────────────────────────────────────────
// SEEDING HELPERS
// ──────────────────────────────────────────────

// AddUser seeds a user.
func (s *MockStore) AddUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.state.users[u.ID] = &c
}

// AddDriver seeds a user together with a driver profile.
func (s *MockStore) AddDriver(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.state.users[u.ID] = &c
	s.state.driverProfiles[u.ID] = &domain.DriverProfile{
		UserID:             u.ID,
		LicenseNumber:      "LIC-" + u.ID,
		CarNumber:          "CAR-" + u.ID,
		VerificationStatus: domain.VerificationApproved,
	}
}

// AddRide seeds a ride.
func (s *MockStore) AddRide(r *domain.Ride) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.state.rides[r.ID] = &c
}

// AddRequest seeds a passenger request.
func (s *MockStore) AddRequest(r *domain.PassengerRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.state.requests[requestKey(r.RideID, r.PassengerID)] = &c
}

// AddChat seeds a chat.
func (s *MockStore) AddChat(c *domain.Chat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := *c
	s.state.chats[c.ID] = &cc
}

// AddMessage seeds a chat message.
func (s *MockStore) AddMessage(m *domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *m
	s.state.messages[m.ID] = &c
}

// AddDonation seeds a donation.
func (s *MockStore) AddDonation(d *domain.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *d
	s.state.donations[d.ID] = &c
}

// AddFeedback seeds a feedback entry.
func (s *MockStore) AddFeedback(f *domain.Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *f
	s.state.feedback[f.ID] = &c
}

// AddNotification seeds a notification.
func (s *MockStore) AddNotification(n *domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.state.notifications[n.ID] = &c
}

// Snapshot returns a deep copy of the current state for assertions.
func (s *MockStore) Snapshot() StoreSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.state.clone()
	return StoreSnapshot{
		Users:         c.users,
		Rides:         c.rides,
		Requests:      c.requests,
		Chats:         c.chats,
		Messages:      c.messages,
		Notifications: c.notifications,
		Donations:     c.donations,
		Feedback:      c.feedback,
		Roles:         c.roles,
	}
}

// StoreSnapshot is a point-in-time copy of every table.
type StoreSnapshot struct {
	Users         map[string]*domain.User
	Rides         map[string]*domain.Ride
	Requests      map[string]*domain.PassengerRequest
	Chats         map[string]*domain.Chat
	Messages      map[string]*domain.Message
	Notifications map[string]*domain.Notification
	Donations     map[string]*domain.Donation
	Feedback      map[string]*domain.Feedback
	Roles         map[string]*domain.RoleAssignment
}

// ──────────────────────────────────────────────
// USER / ROLE REPOSITORIES
// ──────────────────────────────────────────────

type mockUserRepo struct {
	state *memoryState
	errs  *MockStoreErrors
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range m.state.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	c := *user
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.state.users[user.ID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.state.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *mockUserRepo) GetForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.state.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) List(_ context.Context, role domain.Role, offset, limit int) ([]*domain.User, error) {
	var ids []string
	for id := range m.state.users {
		if role == "" || m.userHasRole(id, role) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	users := make([]*domain.User, 0, len(ids))
	for _, id := range paginate(ids, offset, limit) {
		c := *m.state.users[id]
		users = append(users, &c)
	}
	return users, nil
}

func (m *mockUserRepo) Count(_ context.Context, role domain.Role) (int, error) {
	count := 0
	for id := range m.state.users {
		if role == "" || m.userHasRole(id, role) {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepo) userHasRole(userID string, role domain.Role) bool {
	for _, r := range m.state.roles {
		if r.UserID == userID && r.Role == role {
			return true
		}
	}
	return false
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if m.errs.UserDelete != nil {
		return m.errs.UserDelete
	}
	if _, ok := m.state.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.state.users, id)
	return nil
}

type mockRoleRepo struct {
	state *memoryState
}

func (m *mockRoleRepo) AssignRole(_ context.Context, assignment *domain.RoleAssignment) error {
	c := *assignment
	m.state.roles[assignment.ID] = &c
	return nil
}

func (m *mockRoleRepo) RolesForUser(_ context.Context, userID string) ([]domain.Role, error) {
	var roles []domain.Role
	for _, r := range m.state.roles {
		if r.UserID == userID {
			roles = append(roles, r.Role)
		}
	}
	return roles, nil
}

func (m *mockRoleRepo) DeleteRolesForUser(_ context.Context, userID string) error {
	for id, r := range m.state.roles {
		if r.UserID == userID {
			delete(m.state.roles, id)
		}
	}
	return nil
}

func (m *mockRoleRepo) CreateDriverProfile(_ context.Context, profile *domain.DriverProfile) error {
	c := *profile
	m.state.driverProfiles[profile.UserID] = &c
	return nil
}

func (m *mockRoleRepo) GetDriverProfile(_ context.Context, userID string) (*domain.DriverProfile, error) {
	p, ok := m.state.driverProfiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *mockRoleRepo) ListDriverProfiles(_ context.Context, status domain.VerificationStatus, offset, limit int) ([]*domain.DriverProfile, error) {
	var ids []string
	for id, p := range m.state.driverProfiles {
		if status == "" || p.VerificationStatus == status {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	profiles := make([]*domain.DriverProfile, 0, len(ids))
	for _, id := range paginate(ids, offset, limit) {
		c := *m.state.driverProfiles[id]
		profiles = append(profiles, &c)
	}
	return profiles, nil
}

func (m *mockRoleRepo) CountDriverProfiles(_ context.Context, status domain.VerificationStatus) (int, error) {
	count := 0
	for _, p := range m.state.driverProfiles {
		if status == "" || p.VerificationStatus == status {
			count++
		}
	}
	return count, nil
}

func (m *mockRoleRepo) UpdateVerificationStatus(_ context.Context, userID string, status domain.VerificationStatus) error {
	p, ok := m.state.driverProfiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.VerificationStatus = status
	return nil
}

func (m *mockRoleRepo) CreateDonorProfile(_ context.Context, profile *domain.DonorProfile) error {
	c := *profile
	m.state.donorProfiles[profile.UserID] = &c
	return nil
}

func (m *mockRoleRepo) GetDonorProfile(_ context.Context, userID string) (*domain.DonorProfile, error) {
	p, ok := m.state.donorProfiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *mockRoleRepo) CreatePassengerProfile(_ context.Context, profile *domain.PassengerProfile) error {
	c := *profile
	m.state.passengerProfiles[profile.UserID] = &c
	return nil
}

func (m *mockRoleRepo) DeleteProfilesForUser(_ context.Context, userID string) error {
	delete(m.state.driverProfiles, userID)
	delete(m.state.donorProfiles, userID)
	delete(m.state.passengerProfiles, userID)
	return nil
}

// ──────────────────────────────────────────────
// RIDE / REQUEST REPOSITORIES
// ──────────────────────────────────────────────

type mockRideRepo struct {
	state *memoryState
	errs  *MockStoreErrors
}

func (m *mockRideRepo) Create(_ context.Context, ride *domain.Ride) error {
	if m.errs.RideCreate != nil {
		return m.errs.RideCreate
	}
	c := *ride
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.state.rides[ride.ID] = &c
	return nil
}

func (m *mockRideRepo) GetByID(_ context.Context, id string) (*domain.Ride, error) {
	r, ok := m.state.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *mockRideRepo) GetForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRideRepo) ListOpen(_ context.Context, offset, limit int) ([]*domain.Ride, error) {
	var ids []string
	for id, r := range m.state.rides {
		if r.Open() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	rides := make([]*domain.Ride, 0, len(ids))
	for _, id := range paginate(ids, offset, limit) {
		c := *m.state.rides[id]
		rides = append(rides, &c)
	}
	return rides, nil
}

func (m *mockRideRepo) CountOpen(_ context.Context) (int, error) {
	count := 0
	for _, r := range m.state.rides {
		if r.Open() {
			count++
		}
	}
	return count, nil
}

func (m *mockRideRepo) ListByDriverForUpdate(_ context.Context, driverID string) ([]*domain.Ride, error) {
	var ids []string
	for id, r := range m.state.rides {
		if r.DriverID == driverID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	rides := make([]*domain.Ride, 0, len(ids))
	for _, id := range ids {
		c := *m.state.rides[id]
		rides = append(rides, &c)
	}
	return rides, nil
}

func (m *mockRideRepo) UpdateStatus(_ context.Context, id string, status domain.RideStatus) error {
	if m.errs.RideUpdateStatus != nil {
		return m.errs.RideUpdateStatus
	}
	r, ok := m.state.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	return nil
}

func (m *mockRideRepo) Delete(_ context.Context, id string) error {
	if m.errs.RideDelete != nil {
		return m.errs.RideDelete
	}
	if _, ok := m.state.rides[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.state.rides, id)
	return nil
}

type mockRequestRepo struct {
	state *memoryState
	errs  *MockStoreErrors
}

func (m *mockRequestRepo) Create(_ context.Context, req *domain.PassengerRequest) error {
	if m.errs.RequestCreate != nil {
		return m.errs.RequestCreate
	}
	key := requestKey(req.RideID, req.PassengerID)
	if _, ok := m.state.requests[key]; ok {
		return repository.ErrDuplicate
	}
	c := *req
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.state.requests[key] = &c
	return nil
}

func (m *mockRequestRepo) Get(_ context.Context, rideID, passengerID string) (*domain.PassengerRequest, error) {
	r, ok := m.state.requests[requestKey(rideID, passengerID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *mockRequestRepo) ListByRide(_ context.Context, rideID string) ([]*domain.PassengerRequest, error) {
	var keys []string
	for k, r := range m.state.requests {
		if r.RideID == rideID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	reqs := make([]*domain.PassengerRequest, 0, len(keys))
	for _, k := range keys {
		c := *m.state.requests[k]
		reqs = append(reqs, &c)
	}
	return reqs, nil
}

func (m *mockRequestRepo) ListByPassenger(_ context.Context, passengerID string) ([]*domain.PassengerRequest, error) {
	var keys []string
	for k, r := range m.state.requests {
		if r.PassengerID == passengerID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	reqs := make([]*domain.PassengerRequest, 0, len(keys))
	for _, k := range keys {
		c := *m.state.requests[k]
		reqs = append(reqs, &c)
	}
	return reqs, nil
}

func (m *mockRequestRepo) CountApproved(_ context.Context, rideID string) (int, error) {
	count := 0
	for _, r := range m.state.requests {
		if r.RideID == rideID && r.Status == domain.RequestStatusApproved {
			count++
		}
	}
	return count, nil
}

func (m *mockRequestRepo) UpdateStatus(_ context.Context, rideID, passengerID string, status domain.RequestStatus) error {
	if m.errs.RequestUpdateStatus != nil {
		return m.errs.RequestUpdateStatus
	}
	r, ok := m.state.requests[requestKey(rideID, passengerID)]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

func (m *mockRequestRepo) DeleteByRide(_ context.Context, rideID string) error {
	if m.errs.RequestDeleteByRide != nil {
		return m.errs.RequestDeleteByRide
	}
	for k, r := range m.state.requests {
		if r.RideID == rideID {
			delete(m.state.requests, k)
		}
	}
	return nil
}

func (m *mockRequestRepo) DeleteByPassenger(_ context.Context, passengerID string) error {
	for k, r := range m.state.requests {
		if r.PassengerID == passengerID {
			delete(m.state.requests, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// CHAT / MESSAGE REPOSITORIES
// ──────────────────────────────────────────────

type mockChatRepo struct {
	state *memoryState
}

func (m *mockChatRepo) Create(_ context.Context, chat *domain.Chat) error {
	for _, c := range m.state.chats {
		if c.RideID == chat.RideID {
			return repository.ErrDuplicate
		}
	}
	c := *chat
	m.state.chats[chat.ID] = &c
	return nil
}

func (m *mockChatRepo) GetByID(_ context.Context, id string) (*domain.Chat, error) {
	c, ok := m.state.chats[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (m *mockChatRepo) GetByRide(_ context.Context, rideID string) (*domain.Chat, error) {
	for _, c := range m.state.chats {
		if c.RideID == rideID {
			cc := *c
			return &cc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockChatRepo) ListByParticipant(_ context.Context, userID string) ([]*domain.Chat, error) {
	rideIDs := make(map[string]struct{})
	for _, r := range m.state.rides {
		if r.DriverID == userID {
			rideIDs[r.ID] = struct{}{}
		}
	}
	for _, req := range m.state.requests {
		if req.PassengerID == userID {
			rideIDs[req.RideID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(m.state.chats))
	for id, c := range m.state.chats {
		if _, ok := rideIDs[c.RideID]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	chats := make([]*domain.Chat, 0, len(ids))
	for _, id := range ids {
		cc := *m.state.chats[id]
		chats = append(chats, &cc)
	}
	return chats, nil
}

func (m *mockChatRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.state.chats[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.state.chats, id)
	return nil
}

type mockMessageRepo struct {
	state *memoryState
	errs  *MockStoreErrors
}

func (m *mockMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	c := *msg
	if c.SentAt.IsZero() {
		c.SentAt = time.Now()
	}
	m.state.messages[msg.ID] = &c
	return nil
}

func (m *mockMessageRepo) ListByChat(_ context.Context, chatID string) ([]*domain.Message, error) {
	var msgs []*domain.Message
	for _, msg := range m.state.messages {
		if msg.ChatID == chatID {
			c := *msg
			msgs = append(msgs, &c)
		}
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return strings.Compare(msgs[i].ID, msgs[j].ID) < 0
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
	return msgs, nil
}

func (m *mockMessageRepo) LastByChat(ctx context.Context, chatID string) (*domain.Message, error) {
	msgs, _ := m.ListByChat(ctx, chatID)
	if len(msgs) == 0 {
		return nil, repository.ErrNotFound
	}
	return msgs[len(msgs)-1], nil
}

func (m *mockMessageRepo) DeleteByChat(_ context.Context, chatID string) error {
	if m.errs.MessageDeleteByChat != nil {
		return m.errs.MessageDeleteByChat
	}
	for id, msg := range m.state.messages {
		if msg.ChatID == chatID {
			delete(m.state.messages, id)
		}
	}
	return nil
}

func (m *mockMessageRepo) DeleteByAuthor(_ context.Context, authorID string) error {
	for id, msg := range m.state.messages {
		if msg.AuthorID == authorID {
			delete(m.state.messages, id)
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// NOTIFICATION / DONATION / FEEDBACK REPOSITORIES
// ──────────────────────────────────────────────

type mockNotificationRepo struct {
	state *memoryState
	errs  *MockStoreErrors
}

func (m *mockNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if m.errs.NotificationCreate != nil {
		return m.errs.NotificationCreate
	}
	c := *n
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.state.notifications[n.ID] = &c
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]*domain.Notification, error) {
	var items []*domain.Notification
	for _, n := range m.state.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			c := *n
			items = append(items, &c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	ids := make([]string, len(items))
	for i, n := range items {
		ids[i] = n.ID
	}
	page := paginate(ids, offset, limit)
	out := make([]*domain.Notification, 0, len(page))
	for _, n := range items {
		for _, id := range page {
			if n.ID == id {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) CountByUser(_ context.Context, userID string, unreadOnly bool) (int, error) {
	count := 0
	for _, n := range m.state.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	n, ok := m.state.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.state.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, n := range m.state.notifications {
		if n.UserID == userID {
			delete(m.state.notifications, id)
		}
	}
	return nil
}

type mockDonationRepo struct {
	state *memoryState
}

func (m *mockDonationRepo) Create(_ context.Context, d *domain.Donation) error {
	c := *d
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.state.donations[d.ID] = &c
	return nil
}

func (m *mockDonationRepo) ListByRecipient(_ context.Context, recipientID string, offset, limit int) ([]*domain.Donation, error) {
	var ids []string
	for id, d := range m.state.donations {
		if d.RecipientID == recipientID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	donations := make([]*domain.Donation, 0, len(ids))
	for _, id := range paginate(ids, offset, limit) {
		c := *m.state.donations[id]
		donations = append(donations, &c)
	}
	return donations, nil
}

func (m *mockDonationRepo) CountByRecipient(_ context.Context, recipientID string) (int, error) {
	count := 0
	for _, d := range m.state.donations {
		if d.RecipientID == recipientID {
			count++
		}
	}
	return count, nil
}

func (m *mockDonationRepo) ListByDonor(_ context.Context, donorID string, offset, limit int) ([]*domain.Donation, error) {
	var ids []string
	for id, d := range m.state.donations {
		if d.DonorID == donorID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	donations := make([]*domain.Donation, 0, len(ids))
	for _, id := range paginate(ids, offset, limit) {
		c := *m.state.donations[id]
		donations = append(donations, &c)
	}
	return donations, nil
}

func (m *mockDonationRepo) CountByDonor(_ context.Context, donorID string) (int, error) {
	count := 0
	for _, d := range m.state.donations {
		if d.DonorID == donorID {
			count++
		}
	}
	return count, nil
}

func (m *mockDonationRepo) DeleteByParticipant(_ context.Context, userID string) error {
	for id, d := range m.state.donations {
		if d.DonorID == userID || d.RecipientID == userID {
			delete(m.state.donations, id)
		}
	}
	return nil
}

type mockFeedbackRepo struct {
	state *memoryState
	errs  *MockStoreErrors
}

func (m *mockFeedbackRepo) Create(_ context.Context, f *domain.Feedback) error {
	c := *f
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.state.feedback[f.ID] = &c
	return nil
}

func (m *mockFeedbackRepo) ListByRide(_ context.Context, rideID string) ([]*domain.Feedback, error) {
	var ids []string
	for id, f := range m.state.feedback {
		if f.RideID == rideID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	items := make([]*domain.Feedback, 0, len(ids))
	for _, id := range ids {
		c := *m.state.feedback[id]
		items = append(items, &c)
	}
	return items, nil
}

func (m *mockFeedbackRepo) DeleteByRide(_ context.Context, rideID string) error {
	if m.errs.FeedbackDeleteByRide != nil {
		return m.errs.FeedbackDeleteByRide
	}
	for id, f := range m.state.feedback {
		if f.RideID == rideID {
			delete(m.state.feedback, id)
		}
	}
	return nil
}

func (m *mockFeedbackRepo) DeleteByAuthor(_ context.Context, authorID string) error {
	for id, f := range m.state.feedback {
		if f.AuthorID == authorID {
			delete(m.state.feedback, id)
		}
	}
	return nil
}

func paginate(ids []string, offset, limit int) []string {
	if offset >= len(ids) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION SINK
// ──────────────────────────────────────────────

// MockSink records every notification it receives.
type MockSink struct {
	mu     sync.Mutex
	events []SinkEvent

	// Error injection
	NotifyError error
}

// SinkEvent is one recorded notification.
type SinkEvent struct {
	UserID  string
	Kind    service.EventKind
	Payload map[string]any
}

// NewMockSink creates an empty MockSink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

func (m *MockSink) Notify(_ context.Context, userID string, kind service.EventKind, payload map[string]any) error {
	if m.NotifyError != nil {
		return m.NotifyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, SinkEvent{UserID: userID, Kind: kind, Payload: payload})
	return nil
}

// Events returns a copy of everything recorded so far.
func (m *MockSink) Events() []SinkEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SinkEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsFor returns the recorded notifications addressed to one user.
func (m *MockSink) EventsFor(userID string) []SinkEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SinkEvent
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

var _ service.NotificationSink = (*MockSink)(nil)
