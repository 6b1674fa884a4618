// Bootcamp HTTP handlers.
//
// This file exposes REST endpoints for bootcamp resources:
//   - GET    /bootcamps                              (list, advanced results)
//   - GET    /bootcamps/{id}                         (get)
//   - POST   /bootcamps                              (create, Idempotency-Key aware)
//   - PUT    /bootcamps/{id}                         (partial update)
//   - DELETE /bootcamps/{id}                         (delete with courses)
//   - GET    /bootcamps/radius/{zipcode}/{distance}  (radius search)
//
// Handlers are transport-thin: they bind input, call the service, and write
// the envelope. Failures are returned to Wrap.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
	"github.com/tbourn/go-bootcamp-backend/internal/services"
)

// ErrInvalidBody is returned when the JSON body cannot be decoded.
var ErrInvalidBody = apperr.BadRequest("Invalid JSON body")

// GetBootcamps godoc
// @ID          getBootcamps
// @Summary     List bootcamps
// @Description Returns a page of bootcamps. Any bootcamp field can filter as field=value or field[op]=value with op one of eq, gt, gte, lt, lte, in.
// @Tags        Bootcamps
// @Produce     json
//
// @Param       select  query  string  false  "Comma separated fields to return"  example(name,description)
// @Param       sort    query  string  false  "Comma separated sort fields, - for descending"  default(-createdAt)
// @Param       page    query  int     false  "Page number"     minimum(1) default(1)
// @Param       limit   query  int     false  "Items per page"  minimum(1) maximum(100) default(25)
//
// @Success     200  {object}  handlers.Envelope{data=[]domain.Bootcamp}
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /bootcamps [get]
func (h *Handlers) GetBootcamps(c *gin.Context) error {
	return advanced(c)
}

// BootcampLister exposes the service listing to middleware.AdvancedResults.
func (h *Handlers) BootcampLister() middleware.ListFunc[domain.Bootcamp] {
	return h.bootcamps.List
}

// GetBootcamp godoc
// @ID          getBootcamp
// @Summary     Get a bootcamp
// @Tags        Bootcamps
// @Produce     json
// @Param       id   path      string  true  "Bootcamp ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.Bootcamp}
// @Failure     404  {object}  handlers.ErrorResponse  "Bootcamp not found"
// @Router      /bootcamps/{id} [get]
func (h *Handlers) GetBootcamp(c *gin.Context) error {
	b, err := h.bootcamps.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	ok(c, http.StatusOK, b)
	return nil
}

// CreateBootcamp godoc
// @ID          createBootcamp
// @Summary     Create a bootcamp
// @Description Creates a bootcamp owned by the caller. The address is geocoded when no location is given. With an Idempotency-Key, a retried request returns the bootcamp created first and sets Idempotency-Replayed: true.
// @Tags        Bootcamps
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string               false  "Idempotency key"  example(create-bootcamp-7f3a)
// @Param       body             body    domain.BootcampPatch  true   "Bootcamp fields"
// @Success     201  {object}  handlers.Envelope{data=domain.Bootcamp}
// @Header      201  {string}  Idempotency-Replayed  "true when the response is a replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     401  {object}  handlers.ErrorResponse  "Not authenticated"
// @Failure     403  {object}  handlers.ErrorResponse  "Role not allowed"
// @Router      /bootcamps [post]
func (h *Handlers) CreateBootcamp(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("bootcamp", "create", err) }()

	var p domain.BootcampPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	ctx, actor := c.Request.Context(), middleware.ActorFrom(c)

	var (
		b        *domain.Bootcamp
		replayed bool
	)
	if key, found := middleware.GetIdempotencyKey(c); found {
		b, replayed, err = h.bootcamps.CreateIdempotent(ctx, actor, middleware.IdempotencyScope(c), key, p)
	} else {
		b, err = h.bootcamps.Create(ctx, actor, p)
	}
	if err != nil {
		return err
	}
	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, b)
	return nil
}

// UpdateBootcamp godoc
// @ID          updateBootcamp
// @Summary     Update a bootcamp
// @Description Applies the given fields; omitted fields are unchanged. A changed address is geocoded again.
// @Tags        Bootcamps
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string               true  "Bootcamp ID (UUID)"  format(uuid)
// @Param       body  body  domain.BootcampPatch  true  "Fields to change"
// @Success     200  {object}  handlers.Envelope{data=domain.Bootcamp}
// @Failure     400  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Bootcamp not found"
// @Router      /bootcamps/{id} [put]
func (h *Handlers) UpdateBootcamp(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("bootcamp", "update", err) }()

	var p domain.BootcampPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	b, err := h.bootcamps.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	ok(c, http.StatusOK, b)
	return nil
}

// DeleteBootcamp godoc
// @ID          deleteBootcamp
// @Summary     Delete a bootcamp
// @Description Deletes the bootcamp and its courses.
// @Tags        Bootcamps
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Bootcamp ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Bootcamp not found"
// @Router      /bootcamps/{id} [delete]
func (h *Handlers) DeleteBootcamp(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("bootcamp", "delete", err) }()

	if err := h.bootcamps.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return err
	}
	ok(c, http.StatusOK, empty{})
	return nil
}

// GetBootcampsInRadius godoc
// @ID          getBootcampsInRadius
// @Summary     Bootcamps within a distance of a zipcode
// @Description Geocodes the zipcode (first result) and returns every bootcamp located within distance of it.
// @Tags        Bootcamps
// @Produce     json
// @Param       zipcode   path   string  true   "Zipcode"            example(02118)
// @Param       distance  path   number  true   "Distance, > 0"      example(10)
// @Param       unit      query  string  false  "Distance unit"      Enums(mi, km) default(mi)
// @Success     200  {object}  handlers.Envelope{data=[]domain.Bootcamp}
// @Failure     400  {object}  handlers.ErrorResponse  "Bad distance or unit"
// @Failure     404  {object}  handlers.ErrorResponse  "Zipcode not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Geocoding provider failed"
// @Failure     503  {object}  handlers.ErrorResponse  "Geocoder not configured"
// @Router      /bootcamps/radius/{zipcode}/{distance} [get]
func (h *Handlers) GetBootcampsInRadius(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("bootcamp", "radius", err) }()

	distance, perr := strconv.ParseFloat(strings.TrimSpace(c.Param("distance")), 64)
	if perr != nil {
		return services.ErrInvalidDistance.Wrap(perr)
	}
	unit, uerr := geo.ParseUnit(c.DefaultQuery("unit", string(geo.Miles)))
	if uerr != nil {
		return apperr.BadRequest("%s", uerr.Error())
	}

	list, err := h.bootcamps.WithinRadius(c.Request.Context(), c.Param("zipcode"), distance, unit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.Bootcamp{}
	}
	okList(c, list, len(list), nil)
	return nil
}

// advanced writes the page computed by middleware.AdvancedResults.
func advanced(c *gin.Context) error {
	res, found := middleware.AdvancedResultsFrom(c)
	if !found {
		return apperr.Internal("Server Error")
	}
	okList(c, res.Data, res.Count, &res.Pagination)
	return nil
}
