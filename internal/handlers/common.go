package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/types"
)

// parseIDParam extracts a positive integer path parameter.
func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, types.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}

// parsePetitionFilter maps the search query string onto the structured
// filter. categoryIds accepts both repeated keys and comma-separated values.
func parsePetitionFilter(c *fiber.Ctx) (services.PetitionFilter, error) {
	var filter services.PetitionFilter

	filter.Query = c.Query("q")
	filter.SortBy = services.SortKey(c.Query("sortBy"))

	categoryIDs, err := parseCategoryIDs(c)
	if err != nil {
		return filter, err
	}
	filter.CategoryIDs = categoryIDs

	if raw := c.Query("startIndex"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, types.Validation("invalid startIndex %q", raw)
		}
		filter.StartIndex = &v
	}
	if raw := c.Query("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return filter, types.Validation("invalid count %q", raw)
		}
		filter.Count = &v
	}
	if raw := c.Query("supportingCost"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return filter, types.Validation("invalid supportingCost %q", raw)
		}
		filter.MaxSupportingCost = &v
	}
	if raw := c.Query("ownerId"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 1 {
			return filter, types.Validation("invalid ownerId %q", raw)
		}
		filter.OwnerID = &v
	}
	if raw := c.Query("supporterId"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 1 {
			return filter, types.Validation("invalid supporterId %q", raw)
		}
		filter.SupporterID = &v
	}

	return filter, nil
}

// parseCategoryIDs collects category ids from all 'categoryIds' query
// parameters, splitting comma-separated values.
func parseCategoryIDs(c *fiber.Ctx) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != "categoryIds" {
			continue
		}
		for _, part := range strings.Split(string(value), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id < 1 {
				return nil, types.Validation("invalid categoryIds value %q", part)
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}
