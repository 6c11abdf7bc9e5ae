package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neptunetech/storefront/internal/core/domain"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/middleware"
)

// maxImageSize bounds a single uploaded image.
const maxImageSize = 10 << 20

// productHandler handles HTTP requests related to the catalog.
type productHandler struct {
	productService portssvc.ProductSvcFacade
	imageService   portssvc.ImageSvcFacade
}

func newProductHandler(ps portssvc.ProductSvcFacade, is portssvc.ImageSvcFacade) *productHandler {
	return &productHandler{
		productService: ps,
		imageService:   is,
	}
}

// registerProductRoutes registers the public catalog routes on public and the
// write routes on protected.
func registerProductRoutes(public, protected *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newProductHandler(services.Product, services.Image)

	public.GET("/products", h.listProducts)
	public.GET("/products/:id", h.getProduct)

	protected.POST("/products", h.createProduct)
	protected.POST("/products/images", h.uploadImages)
}

// listProducts godoc
// @Summary List products
// @Description Lists every product, newest first.
// @Tags products
// @Produce json
// @Success 200 {array} dto.ProductResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [get]
func (h *productHandler) listProducts(c *gin.Context) {
	products, err := h.productService.GetAllProducts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list products")
		return
	}
	c.JSON(http.StatusOK, dto.ToListProductResponse(products))
}

// getProduct godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [get]
func (h *productHandler) getProduct(c *gin.Context) {
	product, err := h.productService.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}
	c.JSON(http.StatusOK, dto.ToProductResponse(*product))
}

// createProduct godoc
// @Summary Create a product
// @Description Price may be a JSON number or a numeric string. All validation problems are reported together.
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Product"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *productHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Info("Invalid product payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	product, err := h.productService.AddProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	logger.Info("Product created", slog.String("product_id", product.ProductID))
	c.JSON(http.StatusCreated, dto.ToProductResponse(*product))
}

// uploadImages godoc
// @Summary Upload product images
// @Description Uploads 1 to 5 images, one after another, and returns their download URLs in the same order.
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Images"
// @Success 200 {object} dto.UploadImagesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /products/images [post]
func (h *productHandler) uploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Expected a multipart form"})
		return
	}

	headers := form.File["files"]
	files := make([]domain.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readFormFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		files = append(files, f)
	}

	uploaded, err := h.imageService.UploadImages(c.Request.Context(), files)
	if err != nil {
		respondError(c, err, "Failed to upload images")
		return
	}
	c.JSON(http.StatusOK, dto.UploadImagesResponse{Images: uploaded})
}

func readFormFile(fh *multipart.FileHeader) (domain.ImageFile, error) {
	if fh.Size > maxImageSize {
		return domain.ImageFile{}, fmt.Errorf("%s is larger than %d MB", fh.Filename, maxImageSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.ImageFile{}, fmt.Errorf("could not read %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil || len(data) > maxImageSize {
		return domain.ImageFile{}, fmt.Errorf("could not read %s", fh.Filename)
	}
	return domain.ImageFile{Name: fh.Filename, Data: data}, nil
}
