// Course HTTP handlers.
//
//   - GET    /courses                 (list, advanced results)
//   - GET    /bootcamps/{id}/courses  (courses of one bootcamp)
//   - GET    /courses/{id}
//   - POST   /bootcamps/{id}/courses
//   - PUT    /courses/{id}
//   - DELETE /courses/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bootcamp-backend/internal/apperr"
	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/http/middleware"
)

// CourseLister exposes the service listing to middleware.AdvancedResults.
func (h *Handlers) CourseLister() middleware.ListFunc[domain.Course] {
	return h.courses.List
}

// GetCourses godoc
// @ID          getCourses
// @Summary     List courses
// @Description Returns a page of courses across all bootcamps. Filtering, select, sort and paging work as for bootcamps.
// @Tags        Courses
// @Produce     json
// @Param       select  query  string  false  "Comma separated fields to return"
// @Param       sort    query  string  false  "Comma separated sort fields, - for descending"  default(-createdAt)
// @Param       page    query  int     false  "Page number"     minimum(1) default(1)
// @Param       limit   query  int     false  "Items per page"  minimum(1) maximum(100) default(25)
// @Success     200  {object}  handlers.Envelope{data=[]domain.Course}
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed query"
// @Router      /courses [get]
func (h *Handlers) GetCourses(c *gin.Context) error {
	return advanced(c)
}

// GetBootcampCourses godoc
// @ID          getBootcampCourses
// @Summary     List the courses of a bootcamp
// @Tags        Courses
// @Produce     json
// @Param       id     path   string  true   "Bootcamp ID (UUID)"  format(uuid)
// @Param       page   query  int     false  "Page number"     minimum(1) default(1)
// @Param       limit  query  int     false  "Items per page"  minimum(1) maximum(100) default(25)
// @Success     200  {object}  handlers.Envelope{data=[]domain.Course}
// @Failure     404  {object}  handlers.ErrorResponse  "Bootcamp not found"
// @Router      /bootcamps/{id}/courses [get]
func (h *Handlers) GetBootcampCourses(c *gin.Context) error {
	q, err := domain.ParseListQuery(c.Request.URL.Query(), domain.CourseFields)
	if err != nil {
		return apperr.From(err)
	}
	list, total, err := h.courses.ListForBootcamp(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.Course{}
	}
	p := domain.Paginate(q, total)
	okList(c, list, len(list), &p)
	return nil
}

// GetCourse godoc
// @ID          getCourse
// @Summary     Get a course
// @Tags        Courses
// @Produce     json
// @Param       id   path      string  true  "Course ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope{data=domain.Course}
// @Failure     404  {object}  handlers.ErrorResponse  "Course not found"
// @Router      /courses/{id} [get]
func (h *Handlers) GetCourse(c *gin.Context) error {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	ok(c, http.StatusOK, course)
	return nil
}

// AddCourse godoc
// @ID          addCourse
// @Summary     Add a course to a bootcamp
// @Tags        Courses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string              true  "Bootcamp ID (UUID)"  format(uuid)
// @Param       body  body  domain.CoursePatch  true  "Course fields"
// @Success     201  {object}  handlers.Envelope{data=domain.Course}
// @Failure     400  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the bootcamp owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Bootcamp not found"
// @Router      /bootcamps/{id}/courses [post]
func (h *Handlers) AddCourse(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("course", "create", err) }()

	var p domain.CoursePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	course, err := h.courses.Create(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	ok(c, http.StatusCreated, course)
	return nil
}

// UpdateCourse godoc
// @ID          updateCourse
// @Summary     Update a course
// @Tags        Courses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string              true  "Course ID (UUID)"  format(uuid)
// @Param       body  body  domain.CoursePatch  true  "Fields to change"
// @Success     200  {object}  handlers.Envelope{data=domain.Course}
// @Failure     400  {object}  handlers.ErrorResponse  "Validation error"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Course not found"
// @Router      /courses/{id} [put]
func (h *Handlers) UpdateCourse(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("course", "update", err) }()

	var p domain.CoursePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	course, err := h.courses.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), p)
	if err != nil {
		return err
	}
	ok(c, http.StatusOK, course)
	return nil
}

// DeleteCourse godoc
// @ID          deleteCourse
// @Summary     Delete a course
// @Tags        Courses
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Course ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.Envelope
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Course not found"
// @Router      /courses/{id} [delete]
func (h *Handlers) DeleteCourse(c *gin.Context) (err error) {
	defer func() { middleware.RecordOperation("course", "delete", err) }()

	if err := h.courses.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return err
	}
	ok(c, http.StatusOK, empty{})
	return nil
}
