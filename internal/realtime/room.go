package realtime

import "github.com/google/uuid"

// CoupleRoomID derives the shared chat room for two linked users. Both
// ends compute it independently from only the two ids, so the value must
// not depend on argument order: the smaller id (by string comparison)
// always comes first.
func CoupleRoomID(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + "_" + y
}

// UserRoomID is the per-user scope. Every connection of the user joins
// it, so events addressed to a user reach them regardless of which couple
// rooms they have joined so far.
func UserRoomID(id uuid.UUID) string {
	return "user_" + id.String()
}

// PresenceRoomID is the scope a user's partner subscribes to for that
// user's online/offline and mood changes. It is keyed by the observed
// user's id: when A announces online, the notice goes to PresenceRoomID(A),
// which B joined while announcing A as its partner.
func PresenceRoomID(id uuid.UUID) string {
	return "couple_" + id.String()
}
