// Package servicetest holds in-memory fakes shared by the service tests.
package servicetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/employee"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/notification"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/user"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-portal-backend/internal/pkg/storage"
)

// ActorContext returns ctx carrying the claims of an authenticated caller.
func ActorContext(userID string, role user.Role, employeeID string) context.Context {
	return jwt.ContextWithActor(context.Background(), jwt.Actor{
		UserID:     userID,
		Email:      userID + "@example.com",
		Role:       role,
		EmployeeID: employeeID,
	})
}

// ============= Users =============

type UserRepo struct {
	mu    sync.Mutex
	Users map[string]user.User
	seq   int
}

func NewUserRepo(users ...user.User) *UserRepo {
	r := &UserRepo{Users: make(map[string]user.User)}
	for _, u := range users {
		r.Users[u.ID] = u
	}
	return r
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByOAuthID(ctx context.Context, provider, providerID string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.OAuthProvider != nil && *u.OAuthProvider == provider &&
			u.OAuthProviderID != nil && *u.OAuthProviderID == providerID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepo) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if strings.EqualFold(u.Email, newUser.Email) {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	if newUser.ID == "" {
		r.seq++
		newUser.ID = fmt.Sprintf("user-%d", r.seq)
	}
	newUser.Email = strings.ToLower(newUser.Email)
	newUser.CreatedAt = time.Now()
	newUser.UpdatedAt = newUser.CreatedAt
	r.Users[newUser.ID] = newUser
	return newUser, nil
}

func (r *UserRepo) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0)
	for _, u := range r.Users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *UserRepo) ListByRoles(ctx context.Context, roles []user.Role, activeOnly bool) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0)
	for _, u := range r.Users {
		if activeOnly && u.Status != user.StatusActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) update(id string, fn func(*user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.Users[id] = u
	return nil
}

func (r *UserRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) error {
	return r.update(id, func(u *user.User) {
		if req.DisplayName != nil {
			u.DisplayName = *req.DisplayName
		}
		if req.Status != nil {
			u.Status = user.Status(*req.Status)
		}
	})
}

func (r *UserRepo) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return r.update(id, func(u *user.User) { u.Role = role })
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.update(userID, func(u *user.User) { u.PasswordHash = &passwordHash })
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.update(userID, func(u *user.User) { u.LastLoginAt = &at })
}

func (r *UserRepo) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	provider := "google"
	return r.update(userID, func(u *user.User) {
		u.OAuthProvider = &provider
		u.OAuthProviderID = &googleID
	})
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.Users, id)
	return nil
}

// ============= Employees =============

type EmployeeRepo struct {
	mu        sync.Mutex
	Employees map[string]employee.Employee
	seq       int
}

func NewEmployeeRepo(employees ...employee.Employee) *EmployeeRepo {
	r := &EmployeeRepo{Employees: make(map[string]employee.Employee)}
	for _, e := range employees {
		if e.Documents == nil {
			e.Documents = []employee.Document{}
		}
		r.Employees[e.ID] = e
	}
	return r
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.Employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepo) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Employees {
		if e.IsLinkedTo(userID) {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *EmployeeRepo) GetNames(ctx context.Context, ids []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if e, ok := r.Employees[id]; ok {
			names[id] = e.FullName()
		}
	}
	return names, nil
}

func (r *EmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.UserID != nil {
		for _, existing := range r.Employees {
			if existing.IsLinkedTo(*e.UserID) {
				return employee.Employee{}, employee.ErrUserAlreadyLinked
			}
		}
	}
	if e.ID == "" {
		r.seq++
		e.ID = fmt.Sprintf("emp-%d", r.seq)
	}
	if e.Documents == nil {
		e.Documents = []employee.Document{}
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.Employees[e.ID] = e
	return e, nil
}

func (r *EmployeeRepo) update(id string, fn func(*employee.Employee) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.Employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if err := fn(&e); err != nil {
		return err
	}
	e.UpdatedAt = time.Now()
	r.Employees[id] = e
	return nil
}

func (r *EmployeeRepo) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	return r.update(id, func(e *employee.Employee) error {
		if req.FirstName != nil {
			e.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			e.LastName = *req.LastName
		}
		if req.Email != nil {
			e.Email = *req.Email
		}
		if req.Position != nil {
			e.Position = *req.Position
		}
		if req.Department != nil {
			e.Department = *req.Department
		}
		if req.HireDate != nil {
			if d, err := time.Parse("2006-01-02", *req.HireDate); err == nil {
				e.HireDate = d
			}
		}
		applyContact(e, req.Phone, req.Address, req.EmergencyContact)
		return nil
	})
}

func (r *EmployeeRepo) UpdateContact(ctx context.Context, id string, req employee.UpdateOwnProfileRequest) error {
	return r.update(id, func(e *employee.Employee) error {
		applyContact(e, req.Phone, req.Address, req.EmergencyContact)
		return nil
	})
}

func applyContact(e *employee.Employee, phone, address *string, contact *employee.EmergencyContact) {
	if phone != nil {
		e.Phone = phone
	}
	if address != nil {
		e.Address = address
	}
	if contact != nil {
		e.EmergencyContact = contact
	}
}

func (r *EmployeeRepo) UpdateProfilePicture(ctx context.Context, id string, path string) error {
	return r.update(id, func(e *employee.Employee) error {
		e.ProfilePicture = &path
		return nil
	})
}

func (r *EmployeeRepo) AddDocument(ctx context.Context, id string, doc employee.Document) error {
	return r.update(id, func(e *employee.Employee) error {
		e.Documents = append(e.Documents, doc)
		return nil
	})
}

func (r *EmployeeRepo) RemoveDocument(ctx context.Context, id string, documentID string) error {
	return r.update(id, func(e *employee.Employee) error {
		for i, d := range e.Documents {
			if d.ID == documentID {
				e.Documents = append(e.Documents[:i:i], e.Documents[i+1:]...)
				return nil
			}
		}
		return employee.ErrDocumentNotFound
	})
}

func (r *EmployeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]employee.Employee, 0)
	for _, e := range r.Employees {
		if filter.Department != "" && e.Department != filter.Department {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(e.FullName()+" "+e.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, int64(len(out)), nil
}

// ============= Permissions =============

// Checker resolves permissions from the role table plus per-user overrides.
type Checker struct {
	Custom map[string]permission.CustomUserPermissions
	Err    error
}

func (c *Checker) HasPermission(ctx context.Context, userID string, role user.Role, p user.Permission) (bool, error) {
	if c.Err != nil {
		return false, c.Err
	}
	custom, ok := c.Custom[userID]
	if !ok {
		custom = permission.Empty(userID)
	}
	return permission.Has(role, custom, p), nil
}

// ============= Notifications =============

// Sent is one recorded notification.
type Sent struct {
	UserID  string
	Type    notification.NotificationType
	Title   string
	Message string
	Data    map[string]interface{}
}

// Notifier records notifications instead of delivering them.
type Notifier struct {
	mu   sync.Mutex
	Sent []Sent
}

func (n *Notifier) record(userID string, t notification.NotificationType, title, message string, data map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Sent{UserID: userID, Type: t, Title: title, Message: message, Data: data})
}

// All returns a copy of what was recorded so far.
func (n *Notifier) All() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Sent, len(n.Sent))
	copy(out, n.Sent)
	return out
}

func (n *Notifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.record(req.UserID, req.Type, req.Title, req.Message, req.Data)
	return nil
}

func (n *Notifier) NotifyLeaveRequest(ctx context.Context, recipientIDs []string, employeeName, leaveType, startDate, endDate, leaveRequestID string) error {
	for _, id := range recipientIDs {
		n.record(id, notification.TypeLeaveRequest, notification.TitleLeaveRequest,
			notification.LeaveRequestMessage(employeeName, leaveType, startDate, endDate),
			map[string]interface{}{"leaveRequestId": leaveRequestID})
	}
	return nil
}

func (n *Notifier) NotifyLeaveStatus(ctx context.Context, userID string, approved bool, leaveType, startDate, endDate, reason string) error {
	t := notification.TypeLeaveRejected
	title := notification.TitleLeaveRejected
	if approved {
		t = notification.TypeLeaveApproved
		title = notification.TitleLeaveApproved
	}
	n.record(userID, t, title, notification.LeaveStatusMessage(approved, leaveType, startDate, endDate, reason), nil)
	return nil
}

func (n *Notifier) NotifyPayslipAvailable(ctx context.Context, userID string, month, year int, payslipID string) error {
	n.record(userID, notification.TypePayslipAvailable, notification.TitlePayslipAvailable,
		notification.PayslipMessage(month, year), map[string]interface{}{"payslipId": payslipID})
	return nil
}

func (n *Notifier) NotifyDocumentUploaded(ctx context.Context, userID, documentName, employeeID string) error {
	n.record(userID, notification.TypeDocumentUploaded, notification.TitleDocumentUploaded,
		notification.DocumentUploadedMessage(documentName), map[string]interface{}{"employeeId": employeeID})
	return nil
}

func (n *Notifier) NotifyRoleChanged(ctx context.Context, userID, newRole string) error {
	n.record(userID, notification.TypeRoleChanged, notification.TitleRoleChanged,
		notification.RoleChangedMessage(newRole), map[string]interface{}{"role": newRole})
	return nil
}

func (n *Notifier) NotifyClaimSubmitted(ctx context.Context, recipientIDs []string, employeeName, claimType string, urgent bool, claimID string) error {
	for _, id := range recipientIDs {
		n.record(id, notification.TypeClaimSubmitted, notification.TitleClaimSubmitted,
			notification.ClaimSubmittedMessage(employeeName, claimType, urgent),
			map[string]interface{}{"claimId": claimID, "urgent": urgent})
	}
	return nil
}

func (n *Notifier) NotifyClaimResolved(ctx context.Context, userID string, processed bool, claimType, note, claimID string) error {
	title := notification.TitleClaimRejected
	if processed {
		title = notification.TitleClaimProcessed
	}
	n.record(userID, notification.TypeClaimResolved, title,
		notification.ClaimResolvedMessage(processed, claimType, note), map[string]interface{}{"claimId": claimID})
	return nil
}

func (n *Notifier) NotifySystem(ctx context.Context, userIDs []string, title, message string, data map[string]interface{}) error {
	for _, id := range userIDs {
		n.record(id, notification.TypeSystem, title, message, data)
	}
	return nil
}

// ============= Storage =============

// Storage keeps uploaded files in memory.
type Storage struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewStorage() *Storage {
	return &Storage{Files: make(map[string][]byte)}
}

func (s *Storage) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[path] = b
	return path, nil
}

func (s *Storage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Files[path]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, path)
	return nil
}

func (s *Storage) GetURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://files.test/" + path, nil
}

func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Files[path]
	return ok, nil
}

// ============= Email =============

// Mail is one recorded outgoing email.
type Mail struct {
	Kind string
	To   string
	Link string
}

// Email records outgoing mail. Err makes every send fail.
type Email struct {
	mu   sync.Mutex
	Sent []Mail
	Err  error
}

func (e *Email) SendPasswordReset(to, resetLink, expiresAt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Sent = append(e.Sent, Mail{Kind: "reset", To: to, Link: resetLink})
	return nil
}

func (e *Email) SendWelcome(to, displayName, role, loginLink string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Sent = append(e.Sent, Mail{Kind: "welcome", To: to, Link: loginLink})
	return nil
}

// All returns a copy of the recorded mail.
func (e *Email) All() []Mail {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Mail, len(e.Sent))
	copy(out, e.Sent)
	return out
}

// ============= Permission service =============

// Permissions answers from the role table and records cache clears.
// Methods outside that surface panic through the nil embedded interface.
type Permissions struct {
	permission.Service
	Checker
	mu      sync.Mutex
	Cleared []string
}

func (p *Permissions) HasPermission(ctx context.Context, userID string, role user.Role, perm user.Permission) (bool, error) {
	return p.Checker.HasPermission(ctx, userID, role, perm)
}

func (p *Permissions) GetUserPermissions(ctx context.Context, userID string, role user.Role) ([]user.Permission, error) {
	custom, ok := p.Custom[userID]
	if !ok {
		custom = permission.Empty(userID)
	}
	return permission.Effective(role, custom), nil
}

func (p *Permissions) ClearCache(ctx context.Context, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Cleared = append(p.Cleared, userID)
}
