// Package seed fills an empty store with sample players, posts, listings and events.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/footlink/internal/app/models"
	"github.com/yigit/footlink/internal/app/repositories"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/auth"
)

// DefaultPassword is the password of every seeded account
const DefaultPassword = "footlink123"

var sampleUsers = []models.User{
	{Username: "marco_rossi", FullName: "Marco Rossi", Position: "Forward", Club: "AC Lombardia", Location: "Milan, Italy", Bio: "Striker. 40+ league goals over three seasons.", Verified: true, IsPro: true},
	{Username: "sofia_lindqvist", FullName: "Sofia Lindqvist", Position: "Midfielder", Club: "Göteborg Athletic", Location: "Gothenburg, Sweden", Bio: "Box-to-box midfielder and national team regular.", Verified: true, IsPro: true},
	{Username: "kwame_mensah", FullName: "Kwame Mensah", Position: "Defender", Club: "Accra United", Location: "Accra, Ghana", Bio: "Centre back. Looking for a move to Europe.", IsPro: true},
	{Username: "lucia_fernandez", FullName: "Lucía Fernández", Position: "Scout", Club: "Valencia Norte CF", Location: "Valencia, Spain", Bio: "Chief scout covering youth football in Iberia."},
	{Username: "tom_harper", FullName: "Tom Harper", Position: "Manager", Club: "Harbour Town FC", Location: "Bristol, UK", Bio: "UEFA Pro licence. Building a pressing side."},
	{Username: "elitefootballacademy", FullName: "Elite Football Academy", Position: "Club", Club: "Elite Football Academy", Location: "Lisbon, Portugal", Bio: "Training camps led by former professionals.", Verified: true},
}

var samplePosts = []struct {
	author int
	post   models.Post
}{
	{0, models.Post{Type: models.PostTypeText, Content: "Great training session today! Working on improving my finishing."}},
	{0, models.Post{Type: models.PostTypeStats, Content: "Season so far.", StatsData: map[string]any{"goals": 12, "assists": 8, "matches": 20, "passAccuracy": 87}}},
	{1, models.Post{Type: models.PostTypeAchievement, Content: "Proud of this one.", AchievementTitle: "Player of the Month", AchievementSubtitle: "Damallsvenskan - March"}},
	{1, models.Post{Type: models.PostTypeText, Content: "Match day tomorrow. Feeling ready and focused!"}},
	{2, models.Post{Type: models.PostTypeVideo, Content: "Last-ditch tackle from the weekend.", MediaURL: "https://media.footlink.app/samples/tackle.mp4"}},
	{3, models.Post{Type: models.PostTypeText, Content: "Heading to the U19 tournament in Porto next week. Who should I watch?"}},
	{4, models.Post{Type: models.PostTypeText, Content: "We are looking for a left-footed centre back for next season."}},
}

var sampleOpportunities = []models.Opportunity{
	{Title: "First Team Goalkeeper", Club: "Harbour Town FC", Location: "Bristol, UK", Category: "football", Position: "Goalkeeper", Description: "Looking for an experienced goalkeeper to join our first team squad.", Salary: "£3,000/week", Type: "Job"},
	{Title: "Youth Academy Trials", Club: "Valencia Norte CF", Location: "Valencia, Spain", Category: "football", Position: "All Positions", Description: "Open trials for talented players aged 15-18.", Type: "Trial"},
	{Title: "Technical Coach", Club: "Göteborg Athletic", Location: "Gothenburg, Sweden", Category: "training", Description: "Technical skills coach for our youth development program.", Salary: "€55,000/year", Type: "Job"},
	{Title: "Pre-Season Training Camp", Club: "Elite Football Academy", Location: "Lisbon, Portugal", Category: "training", Position: "All Positions", Description: "Two-week intensive camp with UEFA-licensed coaches.", Type: "Training"},
}

var sampleEvents = []struct {
	inDays int
	event  models.Event
}{
	{15, models.Event{Title: "Football Career Expo", Description: "Meet clubs, scouts and agencies from across Europe.", Location: "London, UK", Type: "networking"}},
	{7, models.Event{Title: "Scouting Showcase", Description: "Show your skills in front of scouts from top clubs.", Location: "Madrid, Spain", Type: "trial"}},
	{21, models.Event{Title: "Youth Development Workshop", Description: "The latest training methods for young players.", Location: "Amsterdam, Netherlands", Type: "training"}},
	{45, models.Event{Title: "Final Watch Party", Description: "Watch the final and network with industry peers.", Location: "Berlin, Germany", Type: "social"}},
}

// Run writes the sample data through repos. It is a no-op when the first sample
// user already exists, so it can run on every startup.
func Run(ctx context.Context, repos *repositories.Repositories, now time.Time, lgr zerolog.Logger) error {
	_, err := repos.UserRepository.GetByUsername(ctx, sampleUsers[0].Username)
	if err == nil {
		lgr.Info().Msg("Seed data already present, skipping")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("error checking seed state: %w", err)
	}

	lgr.Info().Msg("Creating seed data...")

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return fmt.Errorf("error hashing seed password: %w", err)
	}

	users := make([]*models.User, 0, len(sampleUsers))
	for _, sample := range sampleUsers {
		user := sample
		user.Password = hash
		if err := repos.UserRepository.Create(ctx, &user); err != nil {
			return fmt.Errorf("error creating seed user %s: %w", user.Username, err)
		}
		users = append(users, &user)
	}

	// From here on failures are collected so one bad row does not hide the rest
	var finalErr error

	posts := make([]*models.Post, 0, len(samplePosts))
	for _, sample := range samplePosts {
		post := sample.post
		post.AuthorID = users[sample.author].ID
		if err := repos.PostRepository.Create(ctx, &post); err != nil {
			lgr.Error().Err(err).Msg("Error creating seed post")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		posts = append(posts, &post)
	}

	for i, post := range posts {
		commenter := users[(i+1)%len(users)]
		if commenter.ID == post.AuthorID {
			commenter = users[(i+2)%len(users)]
		}
		comment := &models.Comment{PostID: post.ID, AuthorID: commenter.ID, Content: "Great work, keep it up!"}
		if err := repos.CommentRepository.Create(ctx, comment); err != nil {
			finalErr = errors.Join(finalErr, err)
		}

		for j := 0; j < i%3+1; j++ {
			liker := users[(i+j+1)%len(users)]
			if liker.ID == post.AuthorID {
				continue
			}
			if _, _, err := repos.LikeRepository.Toggle(ctx, post.ID, liker.ID); err != nil {
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	connections := []struct {
		requester, receiver int
		status              models.ConnectionStatus
	}{
		{0, 1, models.ConnectionAccepted},
		{3, 0, models.ConnectionAccepted},
		{2, 0, models.ConnectionPending},
		{4, 2, models.ConnectionPending},
		{1, 4, models.ConnectionDeclined},
	}
	for _, c := range connections {
		conn := &models.Connection{
			RequesterID: users[c.requester].ID,
			ReceiverID:  users[c.receiver].ID,
			Status:      models.ConnectionPending,
		}
		if err := repos.ConnectionRepository.Create(ctx, conn); err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if c.status != models.ConnectionPending {
			if _, err := repos.ConnectionRepository.UpdateStatus(ctx, conn.ID, models.ConnectionPending, c.status); err != nil {
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	for _, sample := range sampleOpportunities {
		opp := sample
		if err := repos.OpportunityRepository.Create(ctx, &opp); err != nil {
			lgr.Error().Err(err).Str("title", opp.Title).Msg("Error creating seed opportunity")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, sample := range sampleEvents {
		event := sample.event
		event.Date = now.AddDate(0, 0, sample.inDays)
		if err := repos.EventRepository.Create(ctx, &event); err != nil {
			lgr.Error().Err(err).Str("title", event.Title).Msg("Error creating seed event")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().
		Int("users", len(users)).
		Int("posts", len(posts)).
		Int("opportunities", len(sampleOpportunities)).
		Int("events", len(sampleEvents)).
		Msg("Seed data created")

	return finalErr
}
