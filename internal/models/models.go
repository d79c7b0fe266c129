package models

// All returns every persisted model, in migration order.
func All() []any {
	return []any{
		&User{},
		&Post{},
		&PostTag{},
		&Like{},
		&Save{},
		&Comment{},
		&Follow{},
		&Challenge{},
		&ChallengeEntry{},
		&Recommendation{},
		&ClosetItem{},
		&AvatarItem{},
	}
}
