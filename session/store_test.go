package session

import "testing"

func testIdentity() Identity {
	return Identity{
		ID:        "u-1",
		Email:     "sender@example.com",
		FirstName: "Ada",
		LastName:  "Sender",
		Role:      "USER",
		UserType:  UserTypeSender,
		Verified:  true,
		Active:    true,
	}
}

func TestStore_SetCredential(t *testing.T) {
	s := NewStore()

	if s.IsAuthenticated() {
		t.Error("new store should not be authenticated")
	}

	s.SetCredential(testIdentity(), "tok-1")

	if !s.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after SetCredential")
	}
	if tok, ok := s.Token(); !ok || tok != "tok-1" {
		t.Errorf("Token() = %q, %v, want tok-1, true", tok, ok)
	}
	if id, ok := s.Identity(); !ok || id.ID != "u-1" {
		t.Errorf("Identity() = %+v, %v", id, ok)
	}
	if s.Version() != 1 {
		t.Errorf("Version() = %d, want 1", s.Version())
	}
}

func TestStore_SetToken(t *testing.T) {
	s := NewStore()
	s.SetCredential(testIdentity(), "tok-1")

	if !s.SetToken("tok-2") {
		t.Error("SetToken(changed) = false, want true")
	}
	if s.Version() != 2 {
		t.Errorf("Version() = %d, want 2", s.Version())
	}

	// Same value: no change, no version bump.
	if s.SetToken("tok-2") {
		t.Error("SetToken(unchanged) = true, want false")
	}
	if s.Version() != 2 {
		t.Errorf("Version() = %d after unchanged SetToken, want 2", s.Version())
	}
}

func TestStore_SetToken_Unauthenticated(t *testing.T) {
	s := NewStore()

	if s.SetToken("tok-1") {
		t.Error("SetToken on empty store = true, want false")
	}
	if s.IsAuthenticated() {
		t.Error("token must never be present without an identity")
	}
	if _, ok := s.Token(); ok {
		t.Error("Token() present on empty store")
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.SetCredential(testIdentity(), "tok-1")
	s.SetRefreshToken("rt-1")

	s.Clear()

	if s.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after Clear")
	}
	if _, ok := s.Identity(); ok {
		t.Error("Identity() present after Clear")
	}
	if _, ok := s.RefreshToken(); ok {
		t.Error("RefreshToken() present after Clear")
	}
}

func TestStore_VersionMonotonic(t *testing.T) {
	s := NewStore()

	s.SetCredential(testIdentity(), "tok-1") // 1
	s.SetToken("tok-2")                      // 2
	s.Clear()                                // 3
	s.Clear()                                // 4: clearing twice bumps twice

	if s.Version() != 4 {
		t.Errorf("Version() = %d, want 4", s.Version())
	}
}

func TestStore_RoleFlags(t *testing.T) {
	testCases := []struct {
		userType   UserType
		wantDriver bool
		wantSender bool
	}{
		{UserTypeDriver, true, false},
		{UserTypeSender, false, true},
		{UserTypeBoth, true, true},
	}

	for _, tc := range testCases {
		t.Run(string(tc.userType), func(t *testing.T) {
			s := NewStore()
			id := testIdentity()
			id.UserType = tc.userType
			s.SetCredential(id, "tok")

			if got := s.IsDriver(); got != tc.wantDriver {
				t.Errorf("IsDriver() = %v, want %v", got, tc.wantDriver)
			}
			if got := s.IsSender(); got != tc.wantSender {
				t.Errorf("IsSender() = %v, want %v", got, tc.wantSender)
			}
		})
	}
}

func TestStore_RoleFlags_Empty(t *testing.T) {
	s := NewStore()
	if s.IsDriver() || s.IsSender() {
		t.Error("role flags must be false on an empty store")
	}
}
