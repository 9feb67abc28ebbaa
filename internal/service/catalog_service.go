package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/media"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

// DefaultConservationPercentage applies when a product does not set its own share.
const DefaultConservationPercentage = 10

// VariantInput is one variant of a product write request.
type VariantInput struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name" validate:"required"`
	SKU      string  `json:"sku" validate:"required"`
	Price    float64 `json:"price" validate:"gt=0"`
	Stock    int     `json:"stock" validate:"gte=0"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
	Material string  `json:"material,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// ProductInput is a product create or replace request.
type ProductInput struct {
	Name                   string         `json:"name" validate:"required,max=255"`
	Slug                   string         `json:"slug" validate:"required,slug,max=255"`
	SKU                    string         `json:"sku" validate:"required,max=100"`
	Description            string         `json:"description"`
	BasePrice              float64        `json:"basePrice" validate:"gt=0"`
	Featured               bool           `json:"featured"`
	IsActive               *bool          `json:"isActive,omitempty"`
	ConservationPercentage *float64       `json:"conservationPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	ConservationFocus      string         `json:"conservationFocus"`
	ImageURL               string         `json:"imageUrl"`
	CategoryID             string         `json:"categoryId,omitempty"`
	Variants               []VariantInput `json:"variants" validate:"required,min=1,dive"`
}

func (in ProductInput) apply(p *entity.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = in.Slug
	p.SKU = strings.TrimSpace(in.SKU)
	p.Description = in.Description
	p.BasePrice = in.BasePrice
	p.Featured = in.Featured
	p.IsActive = true
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.ConservationPercentage = DefaultConservationPercentage
	if in.ConservationPercentage != nil {
		p.ConservationPercentage = *in.ConservationPercentage
	}
	p.ConservationFocus = in.ConservationFocus
	p.ImageURL = in.ImageURL
	p.CategoryID = nil
	if in.CategoryID != "" {
		id := in.CategoryID
		p.CategoryID = &id
	}
	p.Variants = make([]entity.ProductVariant, 0, len(in.Variants))
	for _, v := range in.Variants {
		pv := entity.ProductVariant{
			Name:     strings.TrimSpace(v.Name),
			SKU:      strings.TrimSpace(v.SKU),
			Price:    v.Price,
			Stock:    v.Stock,
			Size:     v.Size,
			Color:    v.Color,
			Material: v.Material,
			ImageURL: v.ImageURL,
		}
		pv.ID = v.ID
		p.Variants = append(p.Variants, pv)
	}
}

// CategoryInput is a category create or replace request.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"required,slug,max=255"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// CatalogService manages products, categories and product images.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	uploader   media.Uploader
	log        *zap.Logger
}

// NewCatalogService creates a CatalogService. uploader may be nil when image hosting is not configured.
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	uploader media.Uploader,
	log *zap.Logger,
) *CatalogService {
	return &CatalogService{products: products, categories: categories, uploader: uploader, log: log}
}

// ListProducts returns active products matching f, or every product when f.IncludeInactive.
func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]entity.Product, int64, error) {
	return s.products.List(ctx, f)
}

// Featured returns active featured products.
func (s *CatalogService) Featured(ctx context.Context, limit int) ([]entity.Product, error) {
	featured := true
	products, _, err := s.products.List(ctx, repository.ProductFilter{
		Page:     repository.Page{Limit: limit},
		Featured: &featured,
	})
	return products, err
}

// Search matches active products by name, description or SKU.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Product{}, nil
	}
	products, _, err := s.products.List(ctx, repository.ProductFilter{
		Page:  repository.Page{Limit: limit},
		Query: query,
	})
	return products, err
}

// Product finds an active product by ID, falling back to slug.
func (s *CatalogService) Product(ctx context.Context, idOrSlug string) (*entity.Product, error) {
	p, err := s.products.FindByID(ctx, idOrSlug)
	if errors.Is(err, repository.ErrNotFound) {
		p, err = s.products.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, orNotFound(err, "Product not found")
	}
	if !p.IsActive {
		return nil, notFound("Product not found")
	}
	return p, nil
}

// AdminProduct finds any product by ID.
func (s *CatalogService) AdminProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := s.checkProduct(ctx, in); err != nil {
		return nil, err
	}
	p := &entity.Product{}
	in.apply(p)
	for i := range p.Variants {
		p.Variants[i].ID = ""
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, orConflict(err, "A product or variant with this slug or SKU already exists")
	}
	s.log.Info("Product created", zap.String("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// UpdateProduct replaces a product and reconciles its variants by ID.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	if err := s.checkProduct(ctx, in); err != nil {
		return nil, err
	}
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Product not found")
	}
	known := make(map[string]bool, len(existing.Variants))
	for _, v := range existing.Variants {
		known[v.ID] = true
	}

	p := &entity.Product{Model: existing.Model}
	in.apply(p)
	for i := range p.Variants {
		if !known[p.Variants[i].ID] {
			p.Variants[i].ID = ""
		}
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, orConflict(orNotFound(err, "Product not found"), "A product or variant with this slug or SKU already exists")
	}
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) checkProduct(ctx context.Context, in ProductInput) error {
	if err := check(in, "Invalid product data"); err != nil {
		return err
	}
	seen := make(map[string]bool, len(in.Variants))
	for _, v := range in.Variants {
		sku := strings.ToLower(strings.TrimSpace(v.SKU))
		if seen[sku] {
			return invalid("Duplicate variant SKU %s", v.SKU)
		}
		seen[sku] = true
	}
	if in.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return invalid("Category does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return orNotFound(err, "Product not found")
	}
	s.log.Info("Product deleted", zap.String("product_id", id))
	return nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]entity.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	if err := check(in, "Invalid category data"); err != nil {
		return nil, err
	}
	c := &entity.Category{Name: strings.TrimSpace(in.Name), Slug: in.Slug, Description: in.Description, Image: in.Image}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, orConflict(err, "A category with this slug already exists")
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*entity.Category, error) {
	if err := check(in, "Invalid category data"); err != nil {
		return nil, err
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "Category not found")
	}
	c.Name, c.Slug, c.Description, c.Image = strings.TrimSpace(in.Name), in.Slug, in.Description, in.Image
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, orConflict(orNotFound(err, "Category not found"), "A category with this slug already exists")
	}
	return c, nil
}

// DeleteCategory refuses while products still belong to the category.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	err := s.categories.Delete(ctx, id)
	return orConflict(orNotFound(err, "Category not found"), "Cannot delete a category that still has products")
}

// UploadImage stores an image with the configured host.
func (s *CatalogService) UploadImage(ctx context.Context, filename string, r io.Reader) (*media.Asset, error) {
	if s.uploader == nil {
		return nil, unavailable("Image uploads are not configured")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif":
	default:
		return nil, invalid("Unsupported image type")
	}
	asset, err := s.uploader.Upload(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	s.log.Info("Image uploaded", zap.String("public_id", asset.PublicID))
	return asset, nil
}
