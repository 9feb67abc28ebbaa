package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/ai"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// BlogInput is a post create or replace request.
type BlogInput struct {
	Title      string            `json:"title" validate:"required,max=255"`
	Slug       string            `json:"slug,omitempty" validate:"omitempty,slug,max=255"`
	Excerpt    string            `json:"excerpt" validate:"max=1000"`
	Content    string            `json:"content" validate:"required"`
	CoverImage string            `json:"coverImage,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Status     entity.PostStatus `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PUBLISHED"`
}

// GenerateBlogInput asks the model for a draft.
type GenerateBlogInput struct {
	Topic    string   `json:"topic" validate:"required"`
	Keywords []string `json:"keywords,omitempty"`
	Tone     string   `json:"tone,omitempty"`
}

// RenderedPost is a published post with its markdown rendered to sanitized HTML.
type RenderedPost struct {
	entity.BlogPost
	HTML string `json:"html"`
}

// BlogService manages CMS posts.
type BlogService struct {
	posts     repository.BlogRepository
	generator ai.Generator
	log       *zap.Logger
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewBlogService creates a BlogService. generator may be nil when AI is not configured.
func NewBlogService(posts repository.BlogRepository, generator ai.Generator, log *zap.Logger) *BlogService {
	return &BlogService{
		posts:     posts,
		generator: generator,
		log:       log,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:    bluemonday.UGCPolicy(),
		now:       time.Now,
	}
}

// RenderMarkdown converts markdown to HTML safe to embed in pages.
func (s *BlogService) RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return s.policy.Sanitize(buf.String()), nil
}

// Published pages through published posts, newest first.
func (s *BlogService) Published(ctx context.Context, page repository.Page) ([]entity.BlogPost, int64, error) {
	return s.posts.List(ctx, entity.PostPublished, page)
}

// PublishedBySlug returns a published post with rendered HTML.
func (s *BlogService) PublishedBySlug(ctx context.Context, slug string) (*RenderedPost, error) {
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, orNotFound(err, "Post not found")
	}
	if p.Status != entity.PostPublished {
		return nil, notFound("Post not found")
	}
	html, err := s.RenderMarkdown(p.Content)
	if err != nil {
		return nil, err
	}
	return &RenderedPost{BlogPost: *p, HTML: html}, nil
}

// List pages through posts in any state. An empty status lists all.
func (s *BlogService) List(ctx context.Context, status entity.PostStatus, page repository.Page) ([]entity.BlogPost, int64, error) {
	return s.posts.List(ctx, status, page)
}

func (s *BlogService) Get(ctx context.Context, id string) (*entity.BlogPost, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Post not found")
	}
	return p, nil
}

func (s *BlogService) Create(ctx context.Context, in BlogInput, authorID string) (*entity.BlogPost, error) {
	if err := check(in, "Invalid post data"); err != nil {
		return nil, err
	}
	p := &entity.BlogPost{AuthorID: authorID, Status: entity.PostDraft}
	s.apply(p, in)
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, orConflict(err, "A post with this slug already exists")
	}
	s.log.Info("Blog post created", zap.String("post_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

func (s *BlogService) Update(ctx context.Context, id string, in BlogInput) (*entity.BlogPost, error) {
	if err := check(in, "Invalid post data"); err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Post not found")
	}
	s.apply(p, in)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, orConflict(orNotFound(err, "Post not found"), "A post with this slug already exists")
	}
	return p, nil
}

func (s *BlogService) apply(p *entity.BlogPost, in BlogInput) {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = in.Slug
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	p.Excerpt = in.Excerpt
	p.Content = in.Content
	p.CoverImage = in.CoverImage
	p.Tags = strings.Join(in.Tags, ",")
	if in.Status != "" {
		s.setStatus(p, in.Status)
	}
}

func (s *BlogService) setStatus(p *entity.BlogPost, status entity.PostStatus) {
	p.Status = status
	if status == entity.PostPublished && p.PublishedAt == nil {
		now := s.now().UTC()
		p.PublishedAt = &now
	}
}

// Publish marks a post PUBLISHED, keeping the first publication time.
func (s *BlogService) Publish(ctx context.Context, id string) (*entity.BlogPost, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Post not found")
	}
	s.setStatus(p, entity.PostPublished)
	if err := s.posts.Update(ctx, p); err != nil {
		return nil, orNotFound(err, "Post not found")
	}
	return p, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	return orNotFound(s.posts.Delete(ctx, id), "Post not found")
}

// Generate drafts a post with the model and saves it as DRAFT.
func (s *BlogService) Generate(ctx context.Context, in GenerateBlogInput, authorID string) (*entity.BlogPost, error) {
	if s.generator == nil {
		return nil, unavailable("AI is not configured (Missing API Key)")
	}
	if err := check(in, "Topic is required"); err != nil {
		return nil, err
	}
	raw, err := s.generator.Generate(ctx, ai.BlogPrompt(in.Topic, in.Keywords, in.Tone))
	if err != nil {
		return nil, fmt.Errorf("failed to generate blog post: %w", err)
	}
	draft, err := ai.ParseBlog(raw)
	if err != nil {
		return nil, err
	}

	base := Slugify(draft.Title)
	p := &entity.BlogPost{
		Title:    draft.Title,
		Slug:     fmt.Sprintf("%s-%d", base, s.now().Unix()),
		Excerpt:  draft.Excerpt,
		Content:  draft.Content,
		Tags:     strings.Join(draft.Tags, ","),
		Status:   entity.PostDraft,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, orConflict(err, "A post with this slug already exists")
	}
	s.log.Info("Blog draft generated", zap.String("post_id", p.ID), zap.String("topic", in.Topic))
	return p, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
