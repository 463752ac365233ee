package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"eventquotes/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleCatalogImport validates an uploaded catalog file and stores its
// rows. A file with invalid rows is rejected as a whole unless partial=1,
// in which case the valid rows are stored and the errors returned.
// Route: POST /catalog/import (multipart field "file")
func HandleCatalogImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, ok, err := requireActor(e, services.RoleAdmin); !ok {
			return err
		}

		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "file too large or invalid form data"))
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "please select a file to upload"))
		}
		defer file.Close()

		validation, err := services.ValidateCatalogFile(file, header.Filename)
		if err != nil {
			log.Printf("catalog_import: %s: %v", header.Filename, err)
			return e.JSON(http.StatusBadRequest, errorBody("invalid_file", err.Error()))
		}

		if validation.ErrorRows > 0 && e.Request.URL.Query().Get("partial") != "1" {
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":      "invalid_rows",
				"message":    fmt.Sprintf("%d of %d rows have errors", validation.ErrorRows, validation.TotalRows),
				"validation": validation,
			})
		}

		result, err := services.CommitCatalogImport(app, validation.Rows)
		if err != nil {
			return respondError(e, "catalog_import", err)
		}
		log.Printf("catalog_import: %s: %d created, %d updated, %d failed",
			header.Filename, result.Created, result.Updated, result.Failed)

		status := http.StatusOK
		if result.Failed > 0 {
			status = http.StatusMultiStatus
		}
		return e.JSON(status, map[string]any{
			"validation": validation,
			"import":     result,
		})
	}
}

// HandleCatalogImportErrors turns posted validation errors into a
// downloadable workbook.
// Route: POST /catalog/import/errors
func HandleCatalogImportErrors(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, ok, err := requireActor(e, services.RoleAdmin); !ok {
			return err
		}

		var errs []services.ValidationError
		if err := json.NewDecoder(e.Request.Body).Decode(&errs); err != nil {
			return e.JSON(http.StatusBadRequest, errorBody("invalid_request", "invalid error data"))
		}

		xlsxBytes, err := services.GenerateErrorReport(errs)
		if err != nil {
			return respondError(e, "catalog_import_errors", err)
		}

		filename := fmt.Sprintf("Catalogo_Errores_%s.xlsx", time.Now().Format("2006-01-02"))
		return writeDownload(e, xlsxContentType, filename, xlsxBytes)
	}
}

// HandleCatalogTemplate downloads an empty import workbook.
// Route: GET /catalog/import/template
func HandleCatalogTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, ok, err := requireActor(e, services.RoleAdmin); !ok {
			return err
		}

		xlsxBytes, err := services.GenerateCatalogTemplate()
		if err != nil {
			return respondError(e, "catalog_template", err)
		}
		return writeDownload(e, xlsxContentType, "Plantilla_Catalogo.xlsx", xlsxBytes)
	}
}

func writeDownload(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}
