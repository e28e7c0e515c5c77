package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/careernest/internal/app/models"
	"github.com/yigit/careernest/internal/app/repositories"
	"github.com/yigit/careernest/internal/pkg/apperrors"
)

// memDB backs the fake stores. WithTransaction snapshots every table and
// restores it when fn fails, which is what the tests rely on to observe
// rollbacks.
type memDB struct {
	accounts    map[uuid.UUID]models.Account
	profiles    map[uuid.UUID]models.Profile
	colleges    map[int64]models.College
	departments map[int64]models.Department
	tokens      map[string]models.VerificationToken
	onboarding  []models.CollegeOnboardingRequest

	// failUpdate makes the next profile update fail with this error
	failUpdate error
	// profileWrites counts successful profile mutations
	profileWrites int
}

func newMemDB() *memDB {
	return &memDB{
		accounts:    map[uuid.UUID]models.Account{},
		profiles:    map[uuid.UUID]models.Profile{},
		colleges:    map[int64]models.College{},
		departments: map[int64]models.Department{},
		tokens:      map[string]models.VerificationToken{},
	}
}

type snapshot struct {
	accounts map[uuid.UUID]models.Account
	profiles map[uuid.UUID]models.Profile
	tokens   map[string]models.VerificationToken
}

func (m *memDB) snapshot() snapshot {
	s := snapshot{
		accounts: make(map[uuid.UUID]models.Account, len(m.accounts)),
		profiles: make(map[uuid.UUID]models.Profile, len(m.profiles)),
		tokens:   make(map[string]models.VerificationToken, len(m.tokens)),
	}
	for k, v := range m.accounts {
		s.accounts[k] = v
	}
	for k, v := range m.profiles {
		s.profiles[k] = v
	}
	for k, v := range m.tokens {
		s.tokens[k] = v
	}
	return s
}

func (m *memDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.snapshot()
	if err := fn(ctx); err != nil {
		m.accounts, m.profiles, m.tokens = snap.accounts, snap.profiles, snap.tokens
		return err
	}
	return nil
}

func (m *memDB) addCollege(id int64, name, domain string) {
	c := models.College{ID: id, Name: name}
	if domain != "" {
		c.VerificationDomain = &domain
	}
	m.colleges[id] = c
}

func (m *memDB) addDepartment(id int64, name string, collegeID *int64) {
	m.departments[id] = models.Department{ID: id, Name: name, CollegeID: collegeID}
}

func (m *memDB) addProfile(role models.Role, status models.ProfileStatus, name string) uuid.UUID {
	id := uuid.New()
	m.accounts[id] = models.Account{ID: id, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@gmail.com", Role: role, FullName: name}
	m.profiles[id] = models.Profile{ID: id, FullName: name, Role: role, Status: status}
	return id
}

func (m *memDB) tokensFor(userID uuid.UUID) []models.VerificationToken {
	var out []models.VerificationToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

type fakeAccounts struct{ db *memDB }

func (f fakeAccounts) Create(_ context.Context, a *models.Account) error {
	for _, existing := range f.db.accounts {
		if existing.Email == a.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	f.db.accounts[a.ID] = *a
	return nil
}

func (f fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range f.db.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	a, ok := f.db.accounts[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &a, nil
}

func (f fakeAccounts) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	a, ok := f.db.accounts[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	a.PasswordHash = hash
	f.db.accounts[id] = a
	return nil
}

func (f fakeAccounts) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) error {
	a, ok := f.db.accounts[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	a.IsAdmin = isAdmin
	f.db.accounts[id] = a
	return nil
}

type fakeProfiles struct{ db *memDB }

func (f fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	if _, ok := f.db.profiles[p.ID]; ok {
		return apperrors.ErrResourceAlreadyExists
	}
	f.db.profiles[p.ID] = *p
	return nil
}

func (f fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := f.db.profiles[id]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	return &p, nil
}

func (f fakeProfiles) view(p models.Profile) models.ProfileView {
	v := models.ProfileView{Profile: p}
	if p.CollegeID != nil {
		if c, ok := f.db.colleges[*p.CollegeID]; ok {
			v.CollegeName = &c.Name
		}
	}
	if p.DepartmentID != nil {
		if d, ok := f.db.departments[*p.DepartmentID]; ok {
			v.DepartmentName = &d.Name
		}
	}
	return v
}

func (f fakeProfiles) GetView(_ context.Context, id uuid.UUID) (*models.ProfileView, error) {
	p, ok := f.db.profiles[id]
	if !ok {
		return nil, apperrors.ErrProfileNotFound
	}
	v := f.view(p)
	return &v, nil
}

func (f fakeProfiles) UpdateAffiliation(_ context.Context, id uuid.UUID, u models.AffiliationUpdate) error {
	if err := f.db.failUpdate; err != nil {
		f.db.failUpdate = nil
		return err
	}
	p, ok := f.db.profiles[id]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	if u.CollegeID != nil {
		p.CollegeID = u.CollegeID
	}
	if u.DepartmentID != nil {
		p.DepartmentID = u.DepartmentID
	}
	if u.GraduationYear != nil {
		p.GraduationYear = u.GraduationYear
	}
	if u.OfficialEmail != nil {
		p.OfficialEmail = u.OfficialEmail
	}
	if u.PersonalEmail != nil {
		p.PersonalEmail = u.PersonalEmail
	}
	if u.IDProofURL != nil {
		p.IDProofURL = u.IDProofURL
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	f.db.profiles[id] = p
	f.db.profileWrites++
	return nil
}

func (f fakeProfiles) MarkVerified(ctx context.Context, id uuid.UUID, officialEmail string) error {
	p, ok := f.db.profiles[id]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	if p.Status != models.StatusPendingVerification {
		return apperrors.ErrInvalidStatusTransition
	}
	status := models.StatusApproved
	return f.UpdateAffiliation(ctx, id, models.AffiliationUpdate{OfficialEmail: &officialEmail, Status: &status})
}

func (f fakeProfiles) TransitionStatus(_ context.Context, id uuid.UUID, from, to models.ProfileStatus) error {
	p, ok := f.db.profiles[id]
	if !ok {
		return apperrors.ErrProfileNotFound
	}
	if p.Status != from {
		return apperrors.ErrInvalidStatusTransition
	}
	p.Status = to
	f.db.profiles[id] = p
	f.db.profileWrites++
	return nil
}

func (f fakeProfiles) ListByStatus(_ context.Context, status models.ProfileStatus, offset, limit uint64) ([]models.ProfileView, int64, error) {
	var all []models.ProfileView
	for _, p := range f.db.profiles {
		if p.Status == status {
			all = append(all, f.view(p))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FullName < all[j].FullName })
	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return nil, total, nil
	}
	all = all[offset:]
	if uint64(len(all)) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (f fakeProfiles) ListDirectory(_ context.Context, filter repositories.DirectoryFilter) ([]models.ProfileView, error) {
	var out []models.ProfileView
	q := strings.ToLower(filter.Query)
	for _, p := range f.db.profiles {
		if p.Status != models.StatusApproved || p.ID == filter.ExcludeID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.FullName), q) {
			continue
		}
		out = append(out, f.view(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	if uint64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeColleges struct{ db *memDB }

func (f fakeColleges) GetByID(_ context.Context, id int64) (*models.College, error) {
	c, ok := f.db.colleges[id]
	if !ok {
		return nil, apperrors.ErrCollegeNotFound
	}
	return &c, nil
}

func (f fakeColleges) List(_ context.Context, query string) ([]models.College, error) {
	var out []models.College
	for _, c := range f.db.colleges {
		if query == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeColleges) Create(_ context.Context, c *models.College) error {
	c.ID = int64(len(f.db.colleges) + 1)
	f.db.colleges[c.ID] = *c
	return nil
}

type fakeDepartments struct{ db *memDB }

func (f fakeDepartments) GetByID(_ context.Context, id int64) (*models.Department, error) {
	d, ok := f.db.departments[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return &d, nil
}

func (f fakeDepartments) List(_ context.Context, collegeID *int64) ([]models.Department, error) {
	var out []models.Department
	for _, d := range f.db.departments {
		if collegeID == nil || d.CollegeID == nil || *d.CollegeID == *collegeID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeDepartments) Create(_ context.Context, d *models.Department) error {
	d.ID = int64(len(f.db.departments) + 1)
	f.db.departments[d.ID] = *d
	return nil
}

type fakeTokens struct{ db *memDB }

func (f fakeTokens) Create(_ context.Context, t *models.VerificationToken) error {
	if _, ok := f.db.tokens[t.Token]; ok {
		return errors.New("duplicate token")
	}
	f.db.tokens[t.Token] = *t
	return nil
}

func (f fakeTokens) Claim(_ context.Context, token string) (*models.VerificationToken, error) {
	t, ok := f.db.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	delete(f.db.tokens, token)
	return &t, nil
}

func (f fakeTokens) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	for k, t := range f.db.tokens {
		if t.UserID == userID {
			delete(f.db.tokens, k)
		}
	}
	return nil
}

func (f fakeTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.db.tokens {
		if t.Expired(now) {
			delete(f.db.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeOnboarding struct{ db *memDB }

func (f fakeOnboarding) Create(_ context.Context, req *models.CollegeOnboardingRequest) error {
	req.ID = int64(len(f.db.onboarding) + 1)
	f.db.onboarding = append(f.db.onboarding, *req)
	return nil
}

// fixedClock is a settable clock
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
