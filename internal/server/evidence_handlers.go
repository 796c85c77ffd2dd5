package server

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/evidence/internal/model"
	"github.com/mdouchement/evidence/internal/registry"
	"github.com/mdouchement/evidence/internal/server/serializer"
	"github.com/mdouchement/evidence/internal/sferror"
	"github.com/pkg/errors"
)

type (
	// evidence contains all evidence handlers.
	evidence struct {
		registry *registry.Registry
	}

	// evidenceParams holds every field of an evidence, there is no partial update.
	evidenceParams struct {
		Description string          `json:"description"`
		Owner       model.AccountID `json:"owner"`
		File        common.Hash     `json:"file"`
		CaseID      uint32          `json:"case_id"`
		Status      model.Status    `json:"status"`
	}
)

func (p evidenceParams) evidence() *model.Evidence {
	return &model.Evidence{
		Description: p.Description,
		Owner:       p.Owner,
		File:        p.File,
		CaseID:      p.CaseID,
		Status:      p.Status,
	}
}

///// Create
////
//

// Create stores a new evidence and renders its allocated id.
func (h *evidence) Create(c echo.Context) error {
	var params evidenceParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, sferror.InvalidParameters("Could not get evidence params."))
	}

	id, err := h.registry.Create(c.Request().Context(), params.evidence())
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

///// Show
////
//

// Show renders the evidence for the given id.
func (h *evidence) Show(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	out, err := h.registry.Get(c.Request().Context(), id)
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, serializer.Evidence(out))
}

///// List
////
//

// List renders all the evidences.
func (h *evidence) List(c echo.Context) error {
	outs, err := h.registry.List(c.Request().Context())
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, serializer.Global(serializer.Evidences(outs)))
}

// ListByCase renders all the evidences of the given case.
func (h *evidence) ListByCase(c echo.Context) error {
	caseID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	outs, err := h.registry.ListByCase(c.Request().Context(), caseID)
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, serializer.Global(serializer.Evidences(outs)))
}

///// Update
////
//

// Update replaces the evidence for the given id.
func (h *evidence) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var params evidenceParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, sferror.InvalidParameters("Could not get evidence params."))
	}

	if err = h.registry.Update(c.Request().Context(), id, params.evidence()); err != nil {
		return failure(err)
	}

	return c.NoContent(http.StatusNoContent)
}

///// Delete
////
//

// Delete burns the evidence for the given id.
func (h *evidence) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err = h.registry.Delete(c.Request().Context(), id); err != nil {
		return failure(err)
	}

	return c.NoContent(http.StatusNoContent)
}

///// Resolve
////
//

// Resolve renders the given id if it is used by an evidence, 0 otherwise.
func (h *evidence) Resolve(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	id, found, err := h.registry.ResolveID(c.Request().Context(), id)
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"id": id, "found": found})
}

///// Status
////
//

// Status renders the number of stored evidences.
func (h *evidence) Status(c echo.Context) error {
	n, err := h.registry.Count(c.Request().Context())
	if err != nil {
		return failure(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"evidences": n})
}

func paramID(c echo.Context, name string) (uint32, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, sferror.InvalidParameters("Invalid id.")
	}
	return uint32(id), nil
}

// failure converts registry errors to rendered errors.
func failure(err error) error {
	var terr *model.IllegalTransitionError
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return sferror.NotFound("Evidence not found.")
	case errors.Is(err, model.ErrInvalidStatus):
		return sferror.InvalidParameters("Invalid status.")
	case errors.As(err, &terr):
		return sferror.NewWithTagCode(http.StatusConflict, sferror.TagIllegalTransition, terr.Error())
	}
	return err
}
