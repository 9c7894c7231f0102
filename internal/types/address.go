package types

type AddressTag string

const (
	AddressTagHome   AddressTag = "home"
	AddressTagOffice AddressTag = "office"
	AddressTagOther  AddressTag = "other"
)

// Address is a saved shipping address. At most one per user has IsDefault set;
// the backend enforces it.
type Address struct {
	ID        int64      `json:"id"`
	FullName  string     `json:"full_name"`
	Phone     string     `json:"phone"`
	Line1     string     `json:"address_line1"`
	Line2     string     `json:"address_line2,omitempty"`
	Landmark  string     `json:"landmark,omitempty"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	Pincode   string     `json:"pincode"`
	Tag       AddressTag `json:"tag"`
	IsDefault bool       `json:"is_default"`
}

func (a Address) Lines() []string {
	if a.Line2 == "" {
		return []string{a.Line1}
	}
	return []string{a.Line1, a.Line2}
}

// AddressInput is the create/update payload for /profile/addresses.
type AddressInput struct {
	FullName  string     `json:"full_name" validate:"required,max=100" binding:"required"`
	Phone     string     `json:"phone" validate:"required,numeric,len=10" binding:"required"`
	Line1     string     `json:"address_line1" validate:"required,max=200" binding:"required"`
	Line2     string     `json:"address_line2,omitempty" validate:"max=200"`
	Landmark  string     `json:"landmark,omitempty" validate:"max=100"`
	City      string     `json:"city" validate:"required" binding:"required"`
	State     string     `json:"state" validate:"required" binding:"required"`
	Pincode   string     `json:"pincode" validate:"required,numeric,len=6" binding:"required"`
	Tag       AddressTag `json:"tag" validate:"required,oneof=home office other" binding:"required"`
	IsDefault bool       `json:"is_default"`
}

type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

type ProfileUpdate struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,numeric,len=10"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=100"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required" binding:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,nefield=CurrentPassword" binding:"required"`
}
