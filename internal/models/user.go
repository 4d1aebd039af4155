package models

type UserRole string

const (
	UserRoleBuyer   UserRole = "buyer"
	UserRoleBroker  UserRole = "broker"
	UserRoleFounder UserRole = "founder"
)

// User is the read-only copy of the backend account cached in the session.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Mobile   string   `json:"mobile"`
	Role     UserRole `json:"role"`
	BrokerID string   `json:"brokerId,omitempty"`
	Banned   bool     `json:"banned"`
	Address  string   `json:"address,omitempty"`
}

func (u *User) IsFounder() bool { return u != nil && u.Role == UserRoleFounder }

func (u *User) IsBroker() bool { return u != nil && u.Role == UserRoleBroker }

// Session is what the frontend remembers about a signed-in browser.
// Token and User are either both set or both empty.
type Session struct {
	Token string
	User  *User
}

func (s Session) LoggedIn() bool { return s.Token != "" && s.User != nil }

type BrokerDocs struct {
	AadharFront   string `json:"aadharFront"`
	AadharBack    string `json:"aadharBack"`
	PassportPhoto string `json:"passportPhoto"`
}

// PendingBroker is a broker account waiting for founder verification.
type PendingBroker struct {
	User
	BrokerDocs BrokerDocs `json:"brokerDocs"`
}

type BrokerProfile struct {
	Username string `json:"username"`
	BrokerID string `json:"brokerId"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}
