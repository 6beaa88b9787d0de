package entity

import "github.com/google/uuid"

// SessionContext is the authenticated caller of one request. A nil
// *SessionContext means a guest.
type SessionContext struct {
	Account *Account
	Session *Session
}

func (s *SessionContext) AccountID() uuid.UUID {
	if s == nil || s.Account == nil {
		return uuid.Nil
	}
	return s.Account.Id
}

func (s *SessionContext) IsAuthenticated() bool {
	return s != nil && s.Account != nil
}
