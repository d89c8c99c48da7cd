// Package adapter normalizes raw records from the external recipe API and the
// user-submitted backend into the canonical types.Recipe.
package adapter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/recipehub/backend/internal/types"
)

// Adapter converts raw JSON records into canonical recipes
type Adapter struct {
	rewrite HostRewrite
}

// New creates an Adapter that rewrites loopback image hosts with rewrite
func New(rewrite HostRewrite) *Adapter {
	return &Adapter{rewrite: rewrite}
}

// External normalizes a record from the public recipe API
func (a *Adapter) External(raw []byte) (types.Recipe, error) {
	doc, id, name, err := required(types.SourceExternal, raw)
	if err != nil {
		return types.Recipe{}, err
	}

	r := a.common(doc, types.SourceExternal, id, name)
	r.Visibility = types.VisibilityPublic
	r.Approval = types.ApprovalApproved
	return r, nil
}

// UserSubmitted normalizes a record from the backend store
func (a *Adapter) UserSubmitted(raw []byte) (types.Recipe, error) {
	doc, id, name, err := required(types.SourceUserSubmitted, raw)
	if err != nil {
		return types.Recipe{}, err
	}

	r := a.common(doc, types.SourceUserSubmitted, id, name)
	r.OwnerUserID = optInt(doc.Get("userId"))
	r.Visibility = types.ParseVisibility(doc.Get("visibility").String())
	r.Approval = approvalOf(doc.Get("isApproved"))
	return r, nil
}

// Normalize dispatches on source
func (a *Adapter) Normalize(source types.Source, raw []byte) (types.Recipe, error) {
	if source == types.SourceExternal {
		return a.External(raw)
	}
	return a.UserSubmitted(raw)
}

// NormalizeAll normalizes every record, turning malformed ones into warnings
func (a *Adapter) NormalizeAll(source types.Source, records []json.RawMessage) ([]types.Recipe, []types.Warning) {
	recipes := make([]types.Recipe, 0, len(records))
	var warnings []types.Warning
	for _, rec := range records {
		r, err := a.Normalize(source, rec)
		if err != nil {
			warnings = append(warnings, types.Warning{
				Source:  source,
				Message: "skipped a malformed recipe record",
				Err:     err,
			})
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, warnings
}

func (a *Adapter) common(doc gjson.Result, source types.Source, id int, name string) types.Recipe {
	r := types.Recipe{
		ID:                 id,
		Source:             source,
		Name:               name,
		Ingredients:        ParseList(doc.Get("ingredients")),
		Instructions:       ParseInstructions(doc.Get("instructions")),
		Servings:           optInt(doc.Get("servings")),
		PrepTimeMinutes:    optInt(doc.Get("prepTimeMinutes")),
		CookTimeMinutes:    optInt(doc.Get("cookTimeMinutes")),
		Cuisine:            optString(doc.Get("cuisine")),
		Difficulty:         optString(doc.Get("difficulty")),
		Tags:               uniq(ParseList(doc.Get("tags"))),
		CaloriesPerServing: optInt(doc.Get("caloriesPerServing")),
		Rating:             optFloat(doc.Get("rating")),
		ReviewCount:        optInt(doc.Get("reviewCount")),
	}
	if mt := doc.Get("mealType"); mt.Exists() {
		r.MealType = ParseList(mt)
	}
	if img := optString(doc.Get("image")); img != nil {
		rewritten := RewriteImageURL(*img, a.rewrite)
		r.ImageURL = &rewritten
	}
	return r
}

func required(source types.Source, raw []byte) (gjson.Result, int, string, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, 0, "", &types.MalformedRecordError{Source: source, Field: "record", Reason: "is not valid JSON"}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return gjson.Result{}, 0, "", &types.MalformedRecordError{Source: source, Field: "record", Reason: "is not an object"}
	}

	id, ok := intOf(doc.Get("id"))
	if !ok {
		return gjson.Result{}, 0, "", &types.MalformedRecordError{Source: source, Field: "id", Reason: "is missing or not an integer"}
	}
	name := doc.Get("name")
	if name.Type != gjson.String || strings.TrimSpace(name.Str) == "" {
		return gjson.Result{}, 0, "", &types.MalformedRecordError{Source: source, Field: "name", Reason: "is missing"}
	}
	return doc, id, strings.TrimSpace(name.Str), nil
}

func approvalOf(r gjson.Result) types.ApprovalState {
	v, ok := intOf(r)
	if !ok {
		return types.ApprovalPending
	}
	switch types.ApprovalState(v) {
	case types.ApprovalApproved:
		return types.ApprovalApproved
	case types.ApprovalDeclined:
		return types.ApprovalDeclined
	default:
		return types.ApprovalPending
	}
}

// intOf accepts JSON integers and numeric strings
func intOf(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		if r.Num != math.Trunc(r.Num) || r.Num >= math.MaxInt || r.Num < math.MinInt {
			return 0, false
		}
		return int(r.Num), true
	case gjson.String:
		v, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func optInt(r gjson.Result) *int {
	if v, ok := intOf(r); ok {
		return &v
	}
	return nil
}

func optFloat(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		v := r.Num
		return &v
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return nil
		}
		return &v
	default:
		return nil
	}
}

func optString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := strings.TrimSpace(r.Str)
	if s == "" {
		return nil
	}
	return &s
}
