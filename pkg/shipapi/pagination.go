package shipapi

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"time"
)

// Identifiable is implemented by every listable resource.
type Identifiable interface {
	GetID() string
}

// Paginated is a filter set that can produce the filters for the next page.
// Both methods return copies that share no memory with the receiver.
type Paginated[F any] interface {
	ParameterSet
	Clone() F
	WithCursor(beforeID string, pageSize *int) F
}

// ClonePtr returns a pointer to a copy of *p, or nil.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ListParams holds the filters shared by every list endpoint. Resource
// filters embed it and append their own fields.
type ListParams struct {
	BeforeID      *string
	AfterID       *string
	StartDatetime *time.Time
	EndDatetime   *time.Time
	PageSize      *int
}

// Fields returns the shared list fields.
func (l *ListParams) Fields() []Field {
	return []Field{
		{Name: "BeforeID", Path: []string{"before_id"}, Value: Ptr(l.BeforeID)},
		{Name: "AfterID", Path: []string{"after_id"}, Value: Ptr(l.AfterID)},
		{Name: "StartDatetime", Path: []string{"start_datetime"}, Value: Ptr(l.StartDatetime)},
		{Name: "EndDatetime", Path: []string{"end_datetime"}, Value: Ptr(l.EndDatetime)},
		{Name: "PageSize", Path: []string{"page_size"}, Value: Ptr(l.PageSize)},
	}
}

// Copy returns a deep copy of l.
func (l ListParams) Copy() ListParams {
	return ListParams{
		BeforeID:      ClonePtr(l.BeforeID),
		AfterID:       ClonePtr(l.AfterID),
		StartDatetime: ClonePtr(l.StartDatetime),
		EndDatetime:   ClonePtr(l.EndDatetime),
		PageSize:      ClonePtr(l.PageSize),
	}
}

// Cursor returns a deep copy positioned before beforeID. A nil pageSize keeps
// the current one.
func (l ListParams) Cursor(beforeID string, pageSize *int) ListParams {
	next := l.Copy()
	next.BeforeID = &beforeID
	if pageSize != nil {
		next.PageSize = ClonePtr(pageSize)
	}
	return next
}

// Schema implements ParameterSet.
func (l *ListParams) Schema() Schema {
	return Schema{Name: "list", Fields: l.Fields()}
}

// Clone implements Paginated.
func (l *ListParams) Clone() *ListParams {
	var next ListParams
	if l != nil {
		next = l.Copy()
	}
	return &next
}

// WithCursor implements Paginated.
func (l *ListParams) WithCursor(beforeID string, pageSize *int) *ListParams {
	var base ListParams
	if l != nil {
		base = *l
	}
	next := base.Cursor(beforeID, pageSize)
	return &next
}

// Collection is one page of a list endpoint along with the filters that
// produced it.
type Collection[T Identifiable, F Paginated[F]] struct {
	Items   []T
	HasMore bool
	Filters F
}

// ListFunc fetches one page.
type ListFunc[T Identifiable, F Paginated[F]] func(ctx context.Context, filters F) (*Collection[T, F], error)

// NextPage fetches the page that follows coll. It fails with
// ErrEndOfPagination when coll is the last page or is empty.
func NextPage[T Identifiable, F Paginated[F]](ctx context.Context, coll *Collection[T, F], list ListFunc[T, F], pageSize *int) (*Collection[T, F], error) {
	if coll == nil || !coll.HasMore || len(coll.Items) == 0 {
		return nil, NewError(KindEndOfPagination, "there are no more pages to retrieve")
	}

	last, ok := cursorID(coll.Items[len(coll.Items)-1])
	if !ok {
		return nil, NewError(KindDeserialization, "last item of the page has no id to continue from")
	}
	return list(ctx, coll.Filters.WithCursor(last, pageSize))
}

// cursorID reads the id of item, treating a nil pointer as missing.
func cursorID[T Identifiable](item T) (string, bool) {
	v := reflect.ValueOf(item)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return "", false
	}
	id := item.GetID()
	return id, id != ""
}

// Next is the method form of NextPage.
func (c *Collection[T, F]) Next(ctx context.Context, list ListFunc[T, F], pageSize *int) (*Collection[T, F], error) {
	return NextPage(ctx, c, list, pageSize)
}

// ListCollection sends a GET list request and decodes the page found under
// itemsKey.
func ListCollection[T Identifiable, F Paginated[F]](ctx context.Context, c *Client, path, itemsKey string, filters F) (*Collection[T, F], error) {
	filters = filters.Clone()
	wire, err := Serialize(filters)
	if err != nil {
		return nil, err
	}
	req, err := NewRequest(http.MethodGet, path, nil, wire, "")
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewError(KindDeserialization, "list response is not a JSON object").WithCause(err)
	}

	coll := &Collection[T, F]{Filters: filters}
	if raw, ok := envelope[itemsKey]; ok {
		if err := json.Unmarshal(raw, &coll.Items); err != nil {
			return nil, NewError(KindDeserialization, "could not decode "+itemsKey).WithCause(err)
		}
	} else {
		return nil, NewError(KindDeserialization, "list response has no "+itemsKey+" element")
	}
	if raw, ok := envelope["has_more"]; ok {
		if err := json.Unmarshal(raw, &coll.HasMore); err != nil {
			return nil, NewError(KindDeserialization, "could not decode has_more").WithCause(err)
		}
	}

	return coll, nil
}
