package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

type seedAccount struct {
	id       string
	username string
	password string
	name     string
	role     string
	coins    int64
	xp       int64
}

type seedItem struct {
	id          string
	name        string
	description string
	price       int64
	category    domain.ItemCategory
	icon        string
}

var seedAccounts = []seedAccount{
	{id: "seed-admin", username: "admin", password: "admin123", name: "Site Admin", role: domain.RoleAdmin, coins: 1000, xp: 0},
	{id: "seed-teacher", username: "prof.rivera", password: "teach123", name: "Prof. Rivera", role: domain.RoleTeacher, coins: 500, xp: 2500},
	{id: "seed-student", username: "demo.student", password: "learn123", name: "Demo Student", role: domain.RoleStudent, coins: 200, xp: 450},
}

var seedItems = []seedItem{
	{id: "item-streak-freeze", name: "Streak Freeze", description: "Keeps your streak alive for one missed day.", price: 50, category: domain.CategoryConsumable, icon: "freeze"},
	{id: "item-double-xp", name: "Double XP Potion", description: "Doubles XP earned for the next completed course.", price: 100, category: domain.CategoryConsumable, icon: "potion"},
	{id: "item-wizard-hat", name: "Wizard Hat", description: "A pointy hat for your avatar.", price: 300, category: domain.CategoryCosmetic, icon: "hat"},
	{id: "item-golden-frame", name: "Golden Frame", description: "Gilded border around your profile picture.", price: 500, category: domain.CategoryCosmetic, icon: "frame"},
}

// Seed inserts demo accounts and the starter shop catalog. Existing rows are
// left untouched, so it is safe to run on every startup of a dev environment.
func Seed(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC()

	for _, a := range seedAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("seed: hash password for %s: %w", a.username, err)
		}
		_, err = db.ExecContext(ctx, `
			INSERT INTO accounts (id, username, password_hash, name, role, coins, xp, level, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			ON CONFLICT (username) DO NOTHING
		`, a.id, a.username, string(hash), a.name, a.role, a.coins, a.xp, domain.LevelForXP(a.xp), now)
		if err != nil {
			return fmt.Errorf("seed: account %s: %w", a.username, err)
		}
	}

	for _, it := range seedItems {
		_, err := db.ExecContext(ctx, `
			INSERT INTO items (id, name, description, price, category, icon, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO NOTHING
		`, it.id, it.name, it.description, it.price, it.category, it.icon, now)
		if err != nil {
			return fmt.Errorf("seed: item %s: %w", it.name, err)
		}
	}
	return nil
}
