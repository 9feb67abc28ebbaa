package entity

import "time"

// ProductReview is a customer review awaiting or past moderation.
type ProductReview struct {
	Model
	ProductID  string   `gorm:"size:36;index;not null" json:"productId"`
	Product    *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	UserID     *string  `gorm:"size:36" json:"userId,omitempty"`
	Name       string   `gorm:"size:255;not null" json:"name"`
	Email      string   `gorm:"size:255" json:"email,omitempty"`
	Rating     int      `gorm:"not null;index" json:"rating"`
	Title      string   `gorm:"size:255" json:"title,omitempty"`
	Comment    string   `gorm:"type:text" json:"comment"`
	IsApproved bool     `gorm:"index;not null;default:false" json:"isApproved"`
	IsRejected bool     `gorm:"not null;default:false" json:"isRejected"`
	IsVerified bool     `gorm:"not null;default:false" json:"isVerified"`
}

// PostStatus is the publication state of a blog post.
type PostStatus string

const (
	PostDraft     PostStatus = "DRAFT"
	PostPublished PostStatus = "PUBLISHED"
)

// BlogPost is a CMS article written in markdown.
type BlogPost struct {
	Model
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt     string     `gorm:"size:1000" json:"excerpt"`
	Content     string     `gorm:"type:text" json:"content"`
	CoverImage  string     `gorm:"size:1024" json:"coverImage,omitempty"`
	Tags        string     `gorm:"size:500" json:"tags,omitempty"`
	Status      PostStatus `gorm:"size:20;index;not null;default:DRAFT" json:"status"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt,omitempty"`
	AuthorID    string     `gorm:"size:36" json:"authorId,omitempty"`
}

// NewsletterSubscriber is a marketing email recipient.
type NewsletterSubscriber struct {
	Model
	Email          string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name           *string    `gorm:"size:255" json:"name,omitempty"`
	IsActive       bool       `gorm:"index;not null" json:"isActive"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt"`
}

// CampaignStatus is the delivery state of an email campaign.
type CampaignStatus string

const (
	CampaignDraft   CampaignStatus = "DRAFT"
	CampaignSending CampaignStatus = "SENDING"
	CampaignSent    CampaignStatus = "SENT"
)

// EmailCampaign is a marketing email sent to active subscribers.
type EmailCampaign struct {
	Model
	Subject     string         `gorm:"size:255;not null" json:"subject"`
	Preheader   string         `gorm:"size:255" json:"preheader"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Status      CampaignStatus `gorm:"size:20;not null;default:DRAFT" json:"status"`
	SentAt      *time.Time     `json:"sentAt,omitempty"`
	SentCount   int            `gorm:"not null;default:0" json:"sentCount"`
	FailedCount int            `gorm:"not null;default:0" json:"failedCount"`
	CreatedBy   string         `gorm:"size:36" json:"createdBy,omitempty"`
}

// Platform is a social network a post can be scheduled for.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformPinterest Platform = "pinterest"
)

// Social post states.
const (
	PostScheduled  = "scheduled"
	PostDispatched = "dispatched"
	PostFailed     = "failed"
)

// SocialMediaPost is a row queued for later dispatch by the scheduler.
type SocialMediaPost struct {
	Model
	Platform    Platform  `gorm:"size:20;not null" json:"platform"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Hashtags    string    `gorm:"size:1000" json:"hashtags"`
	ImageURL    string    `gorm:"size:1024" json:"imageUrl,omitempty"`
	ScheduledAt time.Time `gorm:"index;not null" json:"scheduledAt"`
	Status      string    `gorm:"size:20;index;not null;default:scheduled" json:"status"`
	CreatedBy   string    `gorm:"size:36" json:"createdById,omitempty"`
}

// SiteSettings is the single row of store-wide settings.
type SiteSettings struct {
	ID                    string     `gorm:"primaryKey;size:36" json:"id"`
	SiteName              string     `gorm:"size:255" json:"siteName"`
	Logo                  string     `gorm:"size:1024" json:"logo"`
	PrimaryColor          string     `gorm:"size:20" json:"primaryColor"`
	ContactEmail          string     `gorm:"size:255" json:"contactEmail"`
	FreeShippingThreshold float64    `json:"freeShippingThreshold"`
	FlatShipping          float64    `json:"flatShipping"`
	TaxRate               float64    `json:"taxRate"`
	LastSyncAt            *time.Time `json:"lastSyncAt,omitempty"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// SettingsID is the primary key of the singleton settings row.
const SettingsID = "site"
