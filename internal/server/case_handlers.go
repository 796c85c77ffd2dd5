package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/evidence/internal/database"
	"github.com/mdouchement/evidence/internal/model"
	"github.com/mdouchement/evidence/internal/server/serializer"
	"github.com/mdouchement/evidence/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// kase contains the handlers of the local case registry.
	kase struct {
		db database.Client
	}

	caseParams struct {
		ID    uint32 `json:"id"`
		Title string `json:"title"`
	}
)

// Create registers or renames a case.
func (h *kase) Create(c echo.Context) error {
	var params caseParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, sferror.InvalidParameters("Could not get case params."))
	}

	if params.ID == 0 || params.Title == "" {
		return sferror.InvalidParameters("A case needs an id and a title.")
	}

	cas := &model.Case{Title: params.Title}
	cas.ID = params.ID

	// Keep the creation date of a renamed case.
	if current, err := h.db.FindCase(params.ID); err == nil {
		cas.CreatedAt = current.CreatedAt
	} else if !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get case")
	}

	if err := h.db.Save(cas); err != nil {
		return errors.Wrap(err, "could not save case")
	}

	return c.JSON(http.StatusCreated, serializer.Case(cas))
}

// Show renders the case for the given id.
func (h *kase) Show(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	cas, err := h.db.FindCase(id)
	if err != nil {
		if h.db.IsNotFound(err) {
			return sferror.NotFound("Case not found.")
		}
		return errors.Wrap(err, "could not get case")
	}

	return c.JSON(http.StatusOK, serializer.Case(cas))
}
