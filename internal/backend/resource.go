package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"

	"github.com/Brownie44l1/propvest/internal/models"
)

// Resource is a CRUD endpoint set rooted at Path (e.g. "/properties")
// returning items of type T.
type Resource[T any] struct {
	client *Client
	Path   string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, Path: path}
}

func (r *Resource[T]) item(id string, rest ...string) string {
	p := r.Path + "/" + url.PathEscape(id)
	for _, s := range rest {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// List fetches one page. params carries any extra query parameters.
func (r *Resource[T]) List(ctx context.Context, q models.PageQuery, params url.Values) (*models.Page[T], error) {
	values := pageValues(q)
	for k, vs := range params {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	var page models.Page[T]
	if err := r.client.do(ctx, http.MethodGet, r.Path, values, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodGet, r.item(id), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodPost, r.Path, nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (r *Resource[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodPut, r.item(id), nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

// Action posts to a domain action such as /properties/:id/feature.
func (r *Resource[T]) Action(ctx context.Context, id, action string, body any) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodPost, r.item(id, action), nil, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Upload sends a file as multipart/form-data to /<path>/:id/upload and
// returns the updated resource, including its new file URL.
func (r *Resource[T]) Upload(ctx context.Context, id, field, filename string, file io.Reader) (*T, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, path.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := r.client.newRequest(ctx, http.MethodPost, r.item(id, "upload"), nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var env models.Envelope[T]
	if err := r.client.send(req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
