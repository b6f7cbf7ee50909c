package remote

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yigit/footlink/internal/app/models"
)

// Rows mirror the backend tables; columns are snake_case.

type userRow struct {
	ID        int64      `json:"id,omitempty"`
	Username  string     `json:"username"`
	Password  string     `json:"password"`
	FullName  string     `json:"full_name"`
	Position  string     `json:"position"`
	Club      string     `json:"club"`
	Location  string     `json:"location"`
	Bio       string     `json:"bio"`
	AvatarURL string     `json:"avatar_url"`
	CoverURL  string     `json:"cover_url"`
	Verified  bool       `json:"verified"`
	IsPro     bool       `json:"is_pro"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func newUserRow(u *models.User) userRow {
	return userRow{
		Username:  u.Username,
		Password:  u.Password,
		FullName:  u.FullName,
		Position:  u.Position,
		Club:      u.Club,
		Location:  u.Location,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		Verified:  u.Verified,
		IsPro:     u.IsPro,
		CreatedAt: timePtr(u.CreatedAt),
	}
}

func (r userRow) model() *models.User {
	return &models.User{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.Password,
		FullName:  r.FullName,
		Position:  r.Position,
		Club:      r.Club,
		Location:  r.Location,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
		CoverURL:  r.CoverURL,
		Verified:  r.Verified,
		IsPro:     r.IsPro,
		CreatedAt: deref(r.CreatedAt),
	}
}

type likeCount struct {
	Count int `json:"count"`
}

type postRow struct {
	ID                  int64                  `json:"id,omitempty"`
	AuthorID            int64                  `json:"author_id"`
	Content             string                 `json:"content"`
	Type                models.PostType        `json:"type"`
	MediaURL            string                 `json:"media_url"`
	Views               int                    `json:"views"`
	AchievementTitle    string                 `json:"achievement_title"`
	AchievementSubtitle string                 `json:"achievement_subtitle"`
	StatsData           map[string]any         `json:"stats_data"`
	SharedData          *models.SharedSnapshot `json:"shared_data"`
	CreatedAt           *time.Time             `json:"created_at,omitempty"`
	// Likes is the embedded aggregate from select=*,likes(count); never written
	Likes []likeCount `json:"likes,omitempty"`
}

func newPostRow(p *models.Post) postRow {
	return postRow{
		AuthorID:            p.AuthorID,
		Content:             p.Content,
		Type:                p.Type,
		MediaURL:            p.MediaURL,
		Views:               p.Views,
		AchievementTitle:    p.AchievementTitle,
		AchievementSubtitle: p.AchievementSubtitle,
		StatsData:           p.StatsData,
		SharedData:          p.SharedPost,
		CreatedAt:           timePtr(p.CreatedAt),
	}
}

func (r postRow) model() *models.Post {
	likes := 0
	if len(r.Likes) > 0 {
		likes = r.Likes[0].Count
	}
	return &models.Post{
		ID:                  r.ID,
		AuthorID:            r.AuthorID,
		Content:             r.Content,
		Type:                r.Type,
		MediaURL:            r.MediaURL,
		Views:               r.Views,
		AchievementTitle:    r.AchievementTitle,
		AchievementSubtitle: r.AchievementSubtitle,
		StatsData:           r.StatsData,
		SharedPost:          r.SharedData,
		Likes:               likes,
		CreatedAt:           deref(r.CreatedAt),
	}
}

type likeRow struct {
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

type commentRow struct {
	ID        int64      `json:"id,omitempty"`
	PostID    int64      `json:"post_id"`
	AuthorID  int64      `json:"author_id"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (r commentRow) model() *models.Comment {
	return &models.Comment{ID: r.ID, PostID: r.PostID, AuthorID: r.AuthorID, Content: r.Content, CreatedAt: deref(r.CreatedAt)}
}

type connectionRow struct {
	ID          int64                   `json:"id,omitempty"`
	RequesterID int64                   `json:"requester_id"`
	ReceiverID  int64                   `json:"receiver_id"`
	Status      models.ConnectionStatus `json:"status"`
	CreatedAt   *time.Time              `json:"created_at,omitempty"`
}

func (r connectionRow) model() *models.Connection {
	return &models.Connection{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		ReceiverID:  r.ReceiverID,
		Status:      r.Status,
		CreatedAt:   deref(r.CreatedAt),
	}
}

type opportunityRow struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Club        string     `json:"club"`
	Location    string     `json:"location"`
	Category    string     `json:"category"`
	Position    string     `json:"position"`
	Description string     `json:"description"`
	Salary      string     `json:"salary"`
	Type        string     `json:"type"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func (r opportunityRow) model() *models.Opportunity {
	return &models.Opportunity{
		ID: r.ID, Title: r.Title, Club: r.Club, Location: r.Location, Category: r.Category,
		Position: r.Position, Description: r.Description, Salary: r.Salary, Type: r.Type, CreatedAt: deref(r.CreatedAt),
	}
}

type eventRow struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	Location    string     `json:"location"`
	Type        string     `json:"type"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func (r eventRow) model() *models.Event {
	return &models.Event{
		ID: r.ID, Title: r.Title, Description: r.Description, Date: r.Date,
		Location: r.Location, Type: r.Type, CreatedAt: deref(r.CreatedAt),
	}
}

type messageRow struct {
	ID         int64      `json:"id,omitempty"`
	SenderID   int64      `json:"sender_id"`
	ReceiverID int64      `json:"receiver_id"`
	Content    string     `json:"content"`
	Read       bool       `json:"read"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

func (r messageRow) model() *models.Message {
	return &models.Message{
		ID: r.ID, SenderID: r.SenderID, ReceiverID: r.ReceiverID,
		Content: r.Content, Read: r.Read, CreatedAt: deref(r.CreatedAt),
	}
}

// Filter helpers for the PostgREST query dialect

func eq(v any) string {
	return fmt.Sprintf("eq.%v", v)
}

func idList(ids []int64) string {
	return "(" + strings.Join(lo.Map(ids, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	}), ",") + ")"
}

// quoted wraps a filter value in double quotes so reserved characters survive
// likePattern wraps q in PostgREST wildcards with the LIKE metacharacters
// escaped, so "%" and "_" in user input match literally
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "*" + r.Replace(q) + "*"
}

func quoted(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}

func query(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Add(pairs[i], pairs[i+1])
	}
	return q
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
