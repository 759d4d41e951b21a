// Package auth resolves who is taking the quiz and with which role.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Role gates ledger population only.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ErrInvalidCredentials is returned for an unknown user or wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is an authenticated user.
type Identity struct {
	Email string
	Name  string
	Role  Role
}

// RecordsMisses reports whether answers by this identity populate the
// missed-question ledger.
func (id Identity) RecordsMisses() bool {
	return id.Role == RoleStudent
}

// Provider yields the current identity, if any.
type Provider interface {
	Current() (Identity, bool)
}

// Static is a Provider fixed at construction.
type Static struct {
	identity Identity
	ok       bool
}

// SignedIn returns a provider for id.
func SignedIn(id Identity) Static {
	return Static{identity: id, ok: true}
}

// Anonymous returns a provider with nobody signed in.
func Anonymous() Static {
	return Static{}
}

func (s Static) Current() (Identity, bool) {
	return s.identity, s.ok
}

// Resolve returns the ledger identity key and role for p. Without a signed-in
// user the anonymous bucket is used and answers are recorded as a student's.
func Resolve(p Provider, anonymousKey string) (key string, id Identity) {
	if p != nil {
		if cur, ok := p.Current(); ok {
			return cur.Email, cur
		}
	}
	return anonymousKey, Identity{Name: "Guest", Role: RoleStudent}
}

// User is a stored account.
type User struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"password_hash"`
}

type usersFile struct {
	Users []User `json:"users"`
}

// Directory is a file-backed set of users with bcrypt password hashes.
type Directory struct {
	mu    sync.RWMutex
	path  string
	users map[string]User
	cost  int
}

// LoadDirectory reads users from path. A missing file yields an empty
// directory that is created on the first Save.
func LoadDirectory(path string) (*Directory, error) {
	d := &Directory{path: path, users: make(map[string]User), cost: bcrypt.DefaultCost}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var f usersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	for _, u := range f.Users {
		d.users[normalizeEmail(u.Email)] = u
	}
	return d, nil
}

// SetCost sets the bcrypt cost used by Put. Values outside bcrypt's range
// keep the default.
func (d *Directory) SetCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	d.mu.Lock()
	d.cost = cost
	d.mu.Unlock()
}

// Authenticate checks the password of email and returns its identity.
func (d *Directory) Authenticate(email, password string) (Identity, error) {
	d.mu.RLock()
	u, ok := d.users[normalizeEmail(email)]
	d.mu.RUnlock()
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

// Put adds or replaces a user, hashing password.
func (d *Directory) Put(email, name string, role Role, password string) error {
	if role != RoleStudent && role != RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[normalizeEmail(email)] = User{
		Email:        strings.TrimSpace(email),
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	return nil
}

// Users returns all users sorted by email.
func (d *Directory) Users() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// Save writes the directory back to its file.
func (d *Directory) Save() error {
	data, err := json.MarshalIndent(usersFile{Users: d.Users()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
