package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/pagination"
)

// GetByID loads the full aggregate. Soft-deleted products are returned too.
func (s *service) GetByID(ctx context.Context, id uuid.UUID, lang enums.LanguageCode) (*ProductDTO, error) {
	return LoadAggregate(ctx, s.repo, id, lang)
}

// LoadAggregate reads the base row, every variant and the bundled tools with
// names resolved for lang.
func LoadAggregate(ctx context.Context, repo *Repository, id uuid.UUID, lang enums.LanguageCode) (*ProductDTO, error) {
	if !lang.IsValid() {
		lang = enums.LanguageKR
	}
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	variants, err := repo.ListVariants(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product variants")
	}
	tools, err := repo.ListBundledTools(ctx, id, lang)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundled tools")
	}
	return newProductDTO(product, variants, tools), nil
}

// List pages the product table. A search that matches no variant yields an
// empty page without running the list queries.
func (s *service) List(ctx context.Context, filters ListFilters) (pagination.Page[ListRow], error) {
	filters = filters.normalized()

	var ids []uuid.UUID
	if filters.Search != "" {
		matched, err := s.repo.MatchingProductIDs(ctx, filters.Search)
		if err != nil {
			return pagination.Page[ListRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
		}
		if len(matched) == 0 {
			return pagination.Empty[ListRow](filters.Page), nil
		}
		ids = matched
	}

	total, err := s.repo.CountProducts(ctx, filters, ids)
	if err != nil {
		return pagination.Page[ListRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	rows, err := s.repo.ListProducts(ctx, filters, ids)
	if err != nil {
		return pagination.Page[ListRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return pagination.NewPage(rows, total, filters.Page), nil
}

// SearchBundlableTools backs the incremental tool picker on the product form.
func (s *service) SearchBundlableTools(ctx context.Context, query string, lang enums.LanguageCode) ([]BundlableToolDTO, error) {
	if !lang.IsValid() {
		lang = enums.LanguageKR
	}
	tools, err := s.repo.SearchBundlableTools(ctx, strings.TrimSpace(query), lang)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search tools")
	}
	return tools, nil
}
