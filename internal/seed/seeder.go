package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/models"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev fills the development database with realistic social data.
// Every seeded account logs in with "password123".
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating follow graph...")
	if err := s.seedFollows(users, 200); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating comments...")
	if err := s.seedComments(users, posts, 600); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("Creating likes...")
	if err := s.seedLikes(users, posts, 1000); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	logger.Log.Info("Seeding complete")
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count+1)

	admin := models.User{
		Username:     "admin",
		Email:        "admin@connectly.dev",
		Name:         "Site Admin",
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < count; i++ {
		role := models.RoleUser
		if i%20 == 19 {
			role = models.RoleModerator
		}

		user := models.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:        fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
			Name:         gofakeit.Name(),
			PasswordHash: string(hashed),
			Role:         role,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedFollows(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		follower := users[rand.Intn(len(users))]
		followed := users[rand.Intn(len(users))]
		if follower.ID == followed.ID {
			continue
		}

		edge := models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
		// Duplicate pairs trip the unique index; skip them.
		if err := s.db.Where("follower_id = ? AND followed_id = ?", follower.ID, followed.ID).
			FirstOrCreate(&edge).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	privacies := []models.Privacy{
		models.PrivacyPublic, models.PrivacyPublic, models.PrivacyPublic,
		models.PrivacyFollowers, models.PrivacyPrivate,
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			AuthorID:  author.ID,
			Content:   gofakeit.Sentence(gofakeit.Number(5, 30)),
			Privacy:   privacies[rand.Intn(len(privacies))],
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post, count int) error {
	var topLevel []models.Comment

	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]

		comment := models.Comment{
			PostID:   post.ID,
			AuthorID: author.ID,
			Content:  gofakeit.Sentence(gofakeit.Number(3, 15)),
		}

		// Roughly a third of comments are replies to an earlier one.
		if len(topLevel) > 0 && rand.Intn(3) == 0 {
			parent := topLevel[rand.Intn(len(topLevel))]
			comment.PostID = parent.PostID
			comment.ParentID = &parent.ID
		}

		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
		if comment.ParentID == nil {
			topLevel = append(topLevel, comment)
		}
	}
	return nil
}

func (s *Seeder) seedLikes(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]

		like := models.Like{UserID: user.ID, PostID: post.ID}
		if err := s.db.Where("user_id = ? AND post_id = ?", user.ID, post.ID).
			FirstOrCreate(&like).Error; err != nil {
			return err
		}
	}
	return nil
}
