package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-landing-pages/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-landing-pages/internal/domain/repository"
	"github.com/oksasatya/go-ddd-landing-pages/pkg/mailer"
)

var ErrNoContact = errors.New("page has no user to contact")

// JobQueue accepts email jobs; *helpers.RabbitPublisher satisfies it.
type JobQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// ContactRequest is a message from the acting editor about a page. Subject
// "locked" addresses the user holding the page's lock; anything else
// addresses its creator.
type ContactRequest struct {
	Subject string
	Message string
}

// PageContact emails the editor responsible for a page through the mail queue.
type PageContact struct {
	Pages   *PageModel
	Users   repo.UserRepository
	Queue   JobQueue
	BaseURL string
	Logger  *logrus.Logger
}

func NewPageContact(pages *PageModel, users repo.UserRepository, q JobQueue, baseURL string, logger *logrus.Logger) *PageContact {
	return &PageContact{Pages: pages, Users: users, Queue: q, BaseURL: strings.TrimRight(baseURL, "/"), Logger: logger}
}

func contactTarget(p *entity.Page, subject string) *entity.User {
	if subject == "locked" {
		return p.CheckedOutBy
	}
	return p.CreatedBy
}

// ContactOwner queues the message and returns the job that was queued.
func (c *PageContact) ContactOwner(ctx context.Context, p *entity.Page, req ContactRequest) (mailer.EmailJob, error) {
	target := contactTarget(p, req.Subject)
	if !target.HasIdentity() {
		return mailer.EmailJob{}, ErrNoContact
	}
	to, err := c.Users.GetByID(ctx, target.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return mailer.EmailJob{}, ErrNoContact
		}
		return mailer.EmailJob{}, err
	}

	job := mailer.EmailJob{
		To:      to.Email,
		Subject: c.Pages.GetUserContactSubject(ctx, req.Subject, p),
		Text:    strings.TrimSpace(req.Message) + "\n\n" + c.BaseURL + c.Pages.GenerateURL(p),
		Tag:     "page-contact",
	}
	if actor := ActorFromContext(ctx); actor.HasIdentity() {
		job.ReplyTo = actor.User.Email
	}
	if !job.Valid() {
		return mailer.EmailJob{}, ErrNoContact
	}
	if c.Queue == nil {
		return job, nil
	}
	if err := c.Queue.PublishJSON(ctx, job); err != nil {
		c.Logger.WithError(err).WithField("page_id", p.ID).Error("queue contact email failed")
		return mailer.EmailJob{}, err
	}
	return job, nil
}
