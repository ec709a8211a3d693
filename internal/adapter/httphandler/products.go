package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/service"
	"github.com/shopspring/decimal"
)

const maxImageSize = 5 << 20

type ProductsService interface {
	Create(
		ctx context.Context, ownerID uuid.UUID, in service.CreateProductInput,
	) (domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Product, error)
	Update(
		ctx context.Context, id uuid.UUID, patch domain.ProductPatch,
	) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachImage(
		ctx context.Context, id uuid.UUID, filename string, data io.Reader,
	) (domain.Product, error)
	List(
		ctx context.Context, f domain.ProductFilter,
	) (domain.ProductPage, error)
}

type ProductsHandler struct {
	products ProductsService
	validate *validator.Validate
}

// RegisterProducts mounts the catalog routes. Reads are public, writes
// require an authenticated user.
func RegisterProducts(
	mux *http.ServeMux,
	products ProductsService,
	authed func(http.Handler) http.Handler,
) {
	h := ProductsHandler{products: products, validate: newValidator()}

	mux.HandleFunc("GET /v1/products", h.GetProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.Handle("POST /v1/products", authed(http.HandlerFunc(h.PostProduct)))
	mux.Handle(
		"PATCH /v1/products/{id}", authed(http.HandlerFunc(h.PatchProduct)),
	)
	mux.Handle(
		"DELETE /v1/products/{id}", authed(http.HandlerFunc(h.DeleteProduct)),
	)
	mux.Handle(
		"POST /v1/products/{id}/images",
		authed(http.HandlerFunc(h.PostProductImage)),
	)
}

func (h ProductsHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	page, err := h.products.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "products retrieved", toProductPageView(page))
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "product retrieved", toProductView(p))
}

func (h ProductsHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PostProduct"
	log := slog.With("op", op)

	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, domain.Unauthorized("access denied"))
		return
	}

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.InvalidInput("invalid JSON data"))
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, err)
		return
	}
	if !req.Price.IsPositive() {
		respondError(w, domain.InvalidInput("price must be greater than zero"))
		return
	}

	p, err := h.products.Create(
		r.Context(), claims.UserID, service.CreateProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Stock:       req.Stock,
			Category:    req.Category,
		},
	)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusCreated, "product created", toProductView(p))
	log.Info("product created", "productID", p.ID, "ownerID", claims.UserID)
}

func (h ProductsHandler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.PatchProduct"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.InvalidInput("invalid JSON data"))
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, err)
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		respondError(w, domain.InvalidInput("price must be greater than zero"))
		return
	}

	p, err := h.products.Update(r.Context(), id, domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "product updated", toProductView(p))
}

func (h ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "product deleted", nil)
}

func (h ProductsHandler) PostProductImage(
	w http.ResponseWriter, r *http.Request,
) {
	const op = "ProductsHandler.PostProductImage"
	log := slog.With("op", op)

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, domain.InvalidInput(
			"image file is required and cannot exceed 5MB",
		))
		log.Warn("failed to read image form file", "err", err)
		return
	}
	defer file.Close()

	data, err := sniffImage(file)
	if err != nil {
		respondError(w, err)
		return
	}

	p, err := h.products.AttachImage(r.Context(), id, header.Filename, data)
	if err != nil {
		respondError(w, err)
		return
	}

	respondData(w, http.StatusOK, "image uploaded", toProductView(p))
	log.Info("image attached", "productID", p.ID)
}

// sniffImage checks the leading bytes against the allowed image types
// and returns a reader that replays them before the rest of the file.
func sniffImage(file io.Reader) (io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, domain.InvalidInput("failed to read image file")
	}
	head = head[:n]

	switch http.DetectContentType(head) {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
	default:
		return nil, domain.InvalidInput(
			"image must be a JPEG, PNG, WEBP or GIF file",
		)
	}

	return io.MultiReader(bytes.NewReader(head), file), nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, domain.InvalidInput("invalid product id")
	}
	return id, nil
}

func parseProductFilter(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sortBy"),
		SortOrder: domain.SortOrder(q.Get("sortOrder")),
	}

	var err error
	if f.Page, err = queryInt(q.Get("page")); err != nil {
		return domain.ProductFilter{}, domain.InvalidInput(
			"page must be an integer",
		)
	}
	if f.PageSize, err = queryInt(q.Get("pageSize")); err != nil {
		return domain.ProductFilter{}, domain.InvalidInput(
			"pageSize must be an integer",
		)
	}
	if f.MinPrice, err = queryDecimal(q.Get("minPrice")); err != nil {
		return domain.ProductFilter{}, domain.InvalidInput(
			"minPrice must be a number",
		)
	}
	if f.MaxPrice, err = queryDecimal(q.Get("maxPrice")); err != nil {
		return domain.ProductFilter{}, domain.InvalidInput(
			"maxPrice must be a number",
		)
	}
	if v := q.Get("inStock"); v != "" {
		f.InStockOnly, err = strconv.ParseBool(v)
		if err != nil {
			return domain.ProductFilter{}, domain.InvalidInput(
				"inStock must be a boolean",
			)
		}
	}

	return f, nil
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func queryDecimal(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
