package core

// Session identifies the authenticated caller of a service operation.
// It is built from verified request credentials and passed down explicitly;
// no service reads ambient global auth state.
type Session struct {
	UserID string
	Email  string
}

func (s Session) IsZero() bool { return s.UserID == "" }
