package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
	"github.com/pusdatin/satudata-backend/internal/domain/auth"
	"github.com/pusdatin/satudata-backend/internal/domain/datasets"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
)

type DatasetCatalogAggregateDeps struct {
	Base BaseDeps

	Datasets repos.DatasetRepo
	Columns  repos.DatasetColumnRepo
}

type datasetCatalogAggregate struct {
	deps DatasetCatalogAggregateDeps
}

func NewDatasetCatalogAggregate(deps DatasetCatalogAggregateDeps) domainagg.DatasetCatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	return &datasetCatalogAggregate{deps: deps}
}

func (a *datasetCatalogAggregate) Contract() domainagg.Contract {
	return domainagg.DatasetCatalogAggregateContract
}

func (a *datasetCatalogAggregate) Create(ctx context.Context, in domainagg.CreateDatasetInput) (*types.Dataset, error) {
	const op = "Datasets.Catalog.Create"
	if !in.Actor.Complete() {
		return nil, executeScoped(ctx, a.deps.Base, op, in.Actor, "", nil)
	}
	if in.Actor.Role != auth.RoleBidang || in.Actor.BidangID == uuid.Nil {
		return nil, forbidden(op, "only a unit operator may create datasets")
	}
	if !in.Kind.Valid() {
		return nil, validation(op, fmt.Sprintf("kind must be %s or %s", datasets.KindStructured, datasets.KindUnstructured), "kind")
	}
	meta := in.Metadata
	meta.Name = strings.TrimSpace(meta.Name)
	if meta.Name == "" {
		return nil, validation(op, "name is required", "name")
	}
	if meta.AccessLevel == "" {
		meta.AccessLevel = datasets.AccessPublic
	}
	if !meta.AccessLevel.Valid() {
		return nil, validation(op, fmt.Sprintf("unknown access level %q", meta.AccessLevel), "access_level")
	}
	columns, err := normalizeColumns(op, in.Kind, in.Columns)
	if err != nil {
		return nil, err
	}
	if a.deps.Datasets == nil || a.deps.Columns == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	var out *types.Dataset
	err = executeScoped(ctx, a.deps.Base, op, in.Actor, "create dataset", func(dbc dbctx.Context) error {
		d := &types.Dataset{
			BidangID:    in.Actor.BidangID,
			Kind:        in.Kind,
			Status:      datasets.StatusDraft,
			Name:        meta.Name,
			Description: strings.TrimSpace(meta.Description),
			AccessLevel: meta.AccessLevel,
			Category:    strings.TrimSpace(meta.Category),
			Periodicity: strings.TrimSpace(meta.Periodicity),
			Contact:     strings.TrimSpace(meta.Contact),
			Topic:       strings.TrimSpace(meta.Topic),
			Source:      strings.TrimSpace(meta.Source),
			Size:        strings.TrimSpace(meta.Size),
			Unit:        strings.TrimSpace(meta.Unit),
			CreatedBy:   in.Actor.ID,
		}
		if err := a.deps.Datasets.Create(dbc, d); err != nil {
			return err
		}
		for _, c := range columns {
			c.DatasetID = d.ID
		}
		if _, err := a.deps.Columns.Create(dbc, columns); err != nil {
			return err
		}
		out = d
		return nil
	})
	return out, err
}

// normalizeColumns converts declared names to token form and assigns 1-based order.
func normalizeColumns(op string, kind datasets.Kind, specs []domainagg.ColumnSpec) ([]*types.DatasetColumn, error) {
	out := make([]*types.DatasetColumn, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		name := datasets.NormalizeColumnName(spec.Name)
		if name == "" {
			return nil, validation(op, fmt.Sprintf("column %d has an empty name", i+1), "columns")
		}
		if _, dup := seen[name]; dup {
			return nil, validation(op, fmt.Sprintf("column %s is declared twice", name), "columns")
		}
		seen[name] = struct{}{}
		out = append(out, &types.DatasetColumn{
			Name:        name,
			Description: strings.TrimSpace(spec.Description),
			OrderIndex:  i + 1,
		})
	}
	if kind == datasets.KindStructured {
		if _, ok := seen[datasets.PeriodColumn]; !ok {
			return nil, &domainagg.Error{
				Code:    domainagg.CodeValidation,
				Op:      op,
				Message: fmt.Sprintf("structured datasets must declare a %s column", datasets.PeriodColumn),
				Meta:    map[string]any{"field": "columns", "rule": "periode_data_required"},
			}
		}
	}
	return out, nil
}

func (a *datasetCatalogAggregate) Update(ctx context.Context, in domainagg.UpdateDatasetInput) (*types.Dataset, error) {
	const op = "Datasets.Catalog.Update"
	if !in.Actor.Complete() {
		return nil, executeScoped(ctx, a.deps.Base, op, in.Actor, "", nil)
	}
	if in.DatasetID == uuid.Nil {
		return nil, validation(op, "missing dataset_id", "dataset_id")
	}
	updates, err := patchUpdates(op, in.Patch)
	if err != nil {
		return nil, err
	}
	if a.deps.Datasets == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	var out *types.Dataset
	err = executeScoped(ctx, a.deps.Base, op, in.Actor, "update dataset", func(dbc dbctx.Context) error {
		d, err := a.deps.Datasets.LockByID(dbc, in.DatasetID)
		if err != nil {
			return err
		}
		if d == nil {
			return datasetNotFound(op, in.DatasetID)
		}
		if in.Actor.Role != auth.RoleBidang || !in.Actor.InUnit(d.BidangID) {
			return forbidden(op, "only the owning unit may edit this dataset")
		}
		if err := RequireDraft(op, d); err != nil {
			return err
		}
		if len(updates) > 0 {
			updates["updated_at"] = a.deps.Base.Now()
			if err := a.deps.Datasets.UpdateFields(dbc, d.ID, updates); err != nil {
				return err
			}
		}
		out, err = a.deps.Datasets.GetByID(dbc, d.ID)
		return err
	})
	return out, err
}

func patchUpdates(op string, p domainagg.MetadataPatch) (map[string]any, error) {
	updates := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, validation(op, "name cannot be empty", "name")
	}
	set("name", p.Name)
	set("description", p.Description)
	set("category", p.Category)
	set("periodicity", p.Periodicity)
	set("contact", p.Contact)
	set("topic", p.Topic)
	set("source", p.Source)
	set("size", p.Size)
	set("unit", p.Unit)
	if p.AccessLevel != nil {
		if !p.AccessLevel.Valid() {
			return nil, validation(op, fmt.Sprintf("unknown access level %q", *p.AccessLevel), "access_level")
		}
		updates["access_level"] = *p.AccessLevel
	}
	return updates, nil
}

func validation(op, message, field string) error {
	return &domainagg.Error{
		Code:    domainagg.CodeValidation,
		Op:      op,
		Message: message,
		Meta:    map[string]any{"field": field},
	}
}
