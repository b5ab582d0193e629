package controllers

import (
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cpbyrne/ostaa/app/services"
	"github.com/cpbyrne/ostaa/config"
	"github.com/cpbyrne/ostaa/pkg/logger"
	"github.com/cpbyrne/ostaa/pkg/reqid"
	"github.com/cpbyrne/ostaa/pkg/response"
	"github.com/cpbyrne/ostaa/pkg/storage"
	"github.com/cpbyrne/ostaa/pkg/validate"
)

// ItemController serves item browsing, creation (multipart, with an
// optional image upload), and description search.
type ItemController struct {
	market *services.MarketService
}

func NewItemController() *ItemController {
	return &ItemController{market: services.NewMarketService()}
}

// NewItemControllerWith injects a pre-built service (tests).
func NewItemControllerWith(market *services.MarketService) *ItemController {
	return &ItemController{market: market}
}

// Index returns every item.
func (c *ItemController) Index(w http.ResponseWriter, r *http.Request) {
	items, err := c.market.ListItems(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, items)
}

// Show returns a single item by id.
func (c *ItemController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Not found")
		return
	}

	item, err := c.market.FetchItem(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, item)
}

type createItemInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=2000"`
	Price       float64 `json:"price" validate:"required,numeric,gte=0"`
	Username    string  `json:"username" validate:"required"`
}

// Create lists a new item for sale. The request is multipart form data:
// title, description, price, username, and an optional single `image`
// file. The file is written to the storage disk; only its generated
// filename is persisted on the item.
func (c *ItemController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.MaxUploadBytes()); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	in := createItemInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Username:    r.FormValue("username"),
	}

	errs := map[string]string{}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs["price"] = "The price field must be a number."
		} else {
			in.Price = price
		}
	}
	for field, msg := range validate.Struct(in) {
		errs[field] = msg
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	imageName, err := c.storeImage(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "image upload failed: "+err.Error())
		return
	}

	item, err := c.market.CreateItem(r.Context(), services.CreateItemInput{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Image:       imageName,
	}, in.Username)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info("item listed",
		"item_id", item.ID.Hex(), "owner", in.Username)
	response.Created(w, item)
}

// storeImage saves the optional image file under a generated name and
// returns that name, or "" when no file was sent.
func (c *ItemController) storeImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	name := reqid.New() + path.Ext(header.Filename)
	if err := storage.Put(path.Join(config.ImageDir(), name), data); err != nil {
		return "", err
	}
	return name, nil
}

// Search returns items whose description contains the keyword,
// case-insensitive. No keyword segment means every item matches.
func (c *ItemController) Search(w http.ResponseWriter, r *http.Request) {
	items, err := c.market.SearchItems(r.Context(), chi.URLParam(r, "keyword"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.Success(w, items)
}
