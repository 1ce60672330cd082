// Package seed fills a development database with plausible bulletin data.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bulletin/internal/models"
	"bulletin/internal/repository"
)

// Options controls how much data is generated.
type Options struct {
	Users    int
	Admins   int
	Requests int
	// MaxComments is the upper bound of comments per request.
	MaxComments int
	// Password is assigned to every generated account.
	Password string
}

// DefaultOptions generates a small office worth of data.
func DefaultOptions() Options {
	return Options{
		Users:       12,
		Admins:      3,
		Requests:    40,
		MaxComments: 5,
		Password:    "password123",
	}
}

var categoryNames = []string{
	"Hardware", "Software", "Facilities", "Process", "Onboarding", "Other",
}

// Run populates the database. It is additive; run it against an empty
// development database.
func Run(db *gorm.DB, opts Options) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	categories, err := seedCategories(db)
	if err != nil {
		return err
	}

	users, err := seedUsers(db, opts, string(hash))
	if err != nil {
		return err
	}

	return seedRequests(db, opts, users, categories)
}

func seedCategories(db *gorm.DB) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		category := models.Category{Name: name, Active: true}
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func seedUsers(db *gorm.DB, opts Options, passwordHash string) ([]models.User, error) {
	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user := models.User{
			Username:    fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:       fmt.Sprintf("seed%d.%s", i, gofakeit.Email()),
			Password:    passwordHash,
			DisplayName: gofakeit.Name(),
			IsAdmin:     i < opts.Admins,
			IsActive:    true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func seedRequests(db *gorm.DB, opts Options, users []models.User, categories []models.Category) error {
	if len(users) == 0 || len(categories) == 0 {
		return nil
	}

	requestRepo := repository.NewRequestRepository(db)
	ctx := context.Background()

	var admins []models.User
	for _, u := range users {
		if u.IsAdmin {
			admins = append(admins, u)
		}
	}

	for i := 0; i < opts.Requests; i++ {
		requestType := models.TypeSuggestion
		statuses := []string{"Under Review", "Accepted", "Rejected", "Implemented"}
		if i%2 == 1 {
			requestType = models.TypeSupport
			statuses = []string{"New", "In Review", "In Progress", "Done", "Closed"}
		}

		submitter := users[rand.Intn(len(users))]
		request := &models.Request{
			Type:            requestType,
			Title:           gofakeit.Sentence(5),
			DescriptionHTML: fmt.Sprintf("<p>%s</p><p>%s</p>", gofakeit.Sentence(12), gofakeit.Sentence(9)),
			Status:          statuses[rand.Intn(len(statuses))],
			CreatedByID:     submitter.ID,
		}
		if requestType == models.TypeSupport && len(admins) > 0 && rand.Intn(3) > 0 {
			owner := admins[rand.Intn(len(admins))]
			request.OwnerID = &owner.ID
		}

		categoryIDs := []uint{categories[rand.Intn(len(categories))].ID}
		if err := requestRepo.Create(ctx, request, categoryIDs); err != nil {
			return err
		}

		for j := 0; j < rand.Intn(opts.MaxComments+1); j++ {
			author := users[rand.Intn(len(users))]
			comment := models.Comment{
				RequestID: request.ID,
				AuthorID:  author.ID,
				Body:      gofakeit.Sentence(10),
			}
			if err := db.Create(&comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
