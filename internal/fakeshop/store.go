package fakeshop

import (
	"cmp"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/almirah-shop/storefront/internal/types"
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = bcrypt.MinCost

type account struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	FullName     string
	PasswordHash []byte
	Role         types.Role
	Verified     bool
	Approved     bool
	BusinessName string
	OTP          string
}

func (a *account) user() *types.User {
	return &types.User{ID: a.ID, Username: a.Username, Email: a.Email}
}

func (a *account) profile() *types.Profile {
	return &types.Profile{ID: a.ID, Username: a.Username, Email: a.Email, Phone: a.Phone, FullName: a.FullName, Role: a.Role}
}

// Store holds all backend state in memory. Every exported method is safe for
// concurrent use.
type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	accounts      map[int64]*account
	products      map[int64]types.Product
	owners        map[int64]int64
	reviews       map[int64][]types.Review
	carts         map[int64][]types.CartLine
	wishlists     map[int64][]types.WishlistItem
	addresses     map[int64][]types.Address
	orders        map[int64][]types.Order
	returns       map[int64][]types.Return
	notifications map[types.Role][]types.Notification
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		accounts:      make(map[int64]*account),
		products:      make(map[int64]types.Product),
		owners:        make(map[int64]int64),
		reviews:       make(map[int64][]types.Review),
		carts:         make(map[int64][]types.CartLine),
		wishlists:     make(map[int64][]types.WishlistItem),
		addresses:     make(map[int64][]types.Address),
		orders:        make(map[int64][]types.Order),
		returns:       make(map[int64][]types.Return),
		notifications: make(map[types.Role][]types.Notification),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// newOTP returns a random six digit code.
func newOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// AccountSpec describes an account to create.
type AccountSpec struct {
	Username     string
	Email        string
	Phone        string
	Password     string
	Role         types.Role
	BusinessName string
	// Verified skips the OTP step.
	Verified bool
	Approved bool
}

// CreateAccount registers a user and returns it with the OTP it must verify.
func (s *Store) CreateAccount(spec AccountSpec) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	phone := strings.TrimSpace(spec.Phone)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		switch {
		case strings.EqualFold(a.Username, spec.Username):
			return nil, badRequest("Username already registered")
		case strings.EqualFold(a.Email, spec.Email):
			return nil, badRequest("Email already registered")
		case phone != "" && a.Phone == phone:
			return nil, badRequest("Phone already registered")
		}
	}
	role := spec.Role
	if !role.Authenticated() {
		role = types.RoleCustomer
	}
	a := &account{
		ID:           s.nextID(),
		Username:     spec.Username,
		Email:        strings.ToLower(spec.Email),
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
		Verified:     spec.Verified,
		Approved:     spec.Approved || role != types.RoleSeller,
		BusinessName: spec.BusinessName,
	}
	if !a.Verified {
		a.OTP = newOTP()
	}
	s.accounts[a.ID] = a
	cp := *a
	return &cp, nil
}

// Authenticate matches identifier against username, email or phone.
func (s *Store) Authenticate(identifier, password string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username != identifier && a.Email != strings.ToLower(identifier) && (a.Phone == "" || a.Phone != identifier) {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)) != nil {
			break
		}
		if !a.Verified {
			return nil, withCode(http.StatusForbidden, types.CodeNotVerified, "Account not verified. Please verify your email first.")
		}
		cp := *a
		return &cp, nil
	}
	return nil, unauthorized("Invalid credentials")
}

func (s *Store) AccountByUsername(username string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, unauthorized("Could not validate credentials")
}

func (s *Store) byEmail(email string) *account {
	for _, a := range s.accounts {
		if a.Email == strings.ToLower(email) {
			return a
		}
	}
	return nil
}

func (s *Store) VerifyOTP(email, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.byEmail(email)
	if a == nil {
		return notFound("User not found")
	}
	if a.Verified {
		return badRequest("Account already verified")
	}
	if a.OTP == "" || a.OTP != otp {
		return badRequest("Invalid OTP")
	}
	a.Verified = true
	a.OTP = ""
	return nil
}

// ForgotPassword issues a reset OTP. Unknown emails get an empty OTP and no error.
func (s *Store) ForgotPassword(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.byEmail(email)
	if a == nil {
		return ""
	}
	a.OTP = newOTP()
	return a.OTP
}

func (s *Store) ResetPassword(email, otp, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.byEmail(email)
	if a == nil || a.OTP == "" || a.OTP != otp {
		return badRequest("Invalid or expired OTP")
	}
	a.PasswordHash = hash
	a.OTP = ""
	a.Verified = true
	return nil
}

func (s *Store) Profile(userID int64) (*types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, notFound("User not found")
	}
	return a.profile(), nil
}

func (s *Store) UpdateProfile(userID int64, u types.ProfileUpdate) (*types.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return nil, notFound("User not found")
	}
	if u.Email != "" {
		if other := s.byEmail(u.Email); other != nil && other.ID != userID {
			return nil, badRequest("Email already registered")
		}
		a.Email = strings.ToLower(u.Email)
	}
	if u.Phone != "" {
		a.Phone = u.Phone
	}
	if u.FullName != "" {
		a.FullName = u.FullName
	}
	return a.profile(), nil
}

func (s *Store) ChangePassword(userID int64, current, next string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(next), passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return notFound("User not found")
	}
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(current)) != nil {
		return badRequest("Current password is incorrect")
	}
	a.PasswordHash = hash
	return nil
}

// ApproveSeller marks a seller account approved.
func (s *Store) ApproveSeller(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Username == username && a.Role == types.RoleSeller {
			a.Approved = true
			return nil
		}
	}
	return notFound("Seller not found")
}

func (s *Store) Sellers() []types.Seller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Seller
	for _, a := range s.accounts {
		if a.Role == types.RoleSeller {
			out = append(out, types.Seller{ID: a.ID, Username: a.Username, Email: a.Email, BusinessName: a.BusinessName, IsApproved: a.Approved})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddProduct stores p under a new id. ownerID is the selling account, or 0.
func (s *Store) AddProduct(p types.Product, ownerID int64) types.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.products[p.ID] = p
	if ownerID != 0 {
		s.owners[p.ID] = ownerID
	}
	return p
}

func (s *Store) AddReview(r types.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[r.ProductID]; !ok {
		return notFound("Product not found")
	}
	r.ID = s.nextID()
	s.reviews[r.ProductID] = append(s.reviews[r.ProductID], r)
	return nil
}

func (s *Store) productList(gender types.Gender) []types.Product {
	out := make([]types.Product, 0, len(s.products))
	for _, p := range s.products {
		if gender == "" || p.Gender == gender {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b types.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *Store) Products(gender types.Gender) []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productList(gender)
}

func (s *Store) ProductsPage(page, size int, gender types.Gender) types.ProductPage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.productList(gender)
	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))
	return types.ProductPage{Items: all[start:end], Total: len(all), Page: page, PageSize: size}
}

func (s *Store) SearchProducts(name string, gender types.Gender) []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name = strings.ToLower(strings.TrimSpace(name))
	var out []types.Product
	for _, p := range s.productList(gender) {
		if name == "" || strings.Contains(strings.ToLower(p.Name), name) || strings.Contains(strings.ToLower(p.Category), name) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Product(id int64) (types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return types.Product{}, notFound("Product not found")
	}
	return p, nil
}

func (s *Store) Reviews(productID int64) ([]types.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.products[productID]; !ok {
		return nil, notFound("Product not found")
	}
	return append([]types.Review{}, s.reviews[productID]...), nil
}

// SimilarProducts returns up to four other products in the same category,
// falling back to the same gender.
func (s *Store) SimilarProducts(productID int64) ([]types.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, notFound("Product not found")
	}
	out := []types.Product{}
	for _, other := range s.productList("") {
		if other.ID == p.ID {
			continue
		}
		if other.Category == p.Category || (p.Category == "" && other.Gender == p.Gender) {
			out = append(out, other)
		}
		if len(out) == 4 {
			break
		}
	}
	return out, nil
}

func (s *Store) SellerProducts(sellerID int64) []types.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []types.Product{}
	for _, p := range s.productList("") {
		if s.owners[p.ID] == sellerID {
			out = append(out, p)
		}
	}
	return out
}

// PendingOTP returns the outstanding OTP for email, if any.
func (s *Store) PendingOTP(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a := s.byEmail(email)
	if a == nil || a.OTP == "" {
		return "", false
	}
	return a.OTP, true
}
