package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/query"
	"github.com/Skotchmaster/sweet_shop/internal/util"
)

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return uint(id), nil
}

func pageOf(c echo.Context) query.Page {
	return query.NewPage(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize),
	)
}

func optBool(ve *domain.ValidationError, c echo.Context, key string) mo.Option[bool] {
	raw := c.QueryParam(key)
	if raw == "" {
		return mo.None[bool]()
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		ve.Add(key, "must be true or false")
		return mo.None[bool]()
	}
	return mo.Some(v)
}

func optDecimal(ve *domain.ValidationError, c echo.Context, key string) mo.Option[decimal.Decimal] {
	raw := strings.TrimSpace(c.QueryParam(key))
	if raw == "" {
		return mo.None[decimal.Decimal]()
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		ve.Add(key, "must be a number")
		return mo.None[decimal.Decimal]()
	}
	return mo.Some(v)
}

func optString(c echo.Context, key string) mo.Option[string] {
	if v := strings.TrimSpace(c.QueryParam(key)); v != "" {
		return mo.Some(v)
	}
	return mo.None[string]()
}

// criteriaOf reads catalog filters from the query string.
func criteriaOf(c echo.Context) (query.Criteria, error) {
	ve := &domain.ValidationError{}

	crit := query.Criteria{
		Name:     optString(c, "name"),
		Text:     optString(c, "search"),
		MinPrice: optDecimal(ve, c, "min_price"),
		MaxPrice: optDecimal(ve, c, "max_price"),
		Featured: optBool(ve, c, "is_featured"),
		SortBy:   strings.TrimSpace(c.QueryParam("sort_by")),
	}
	if cat, ok := optString(c, "category").Get(); ok {
		crit.Category = mo.Some(models.Category(strings.ToLower(cat)))
	}
	crit.AvailableOnly = optBool(ve, c, "available_only").OrElse(false)

	if err := ve.OrNil(); err != nil {
		return query.Criteria{}, err
	}
	return crit, nil
}
