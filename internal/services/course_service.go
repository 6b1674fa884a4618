package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
)

// CourseService owns the course lifecycle. Courses are created under a
// bootcamp by that bootcamp's owner.
type CourseService struct {
	Bootcamps BootcampStore
	Courses   CourseStore
}

func (s *CourseService) tracer() trace.Tracer { return otel.Tracer("services/CourseService") }

// List returns one page of courses across all bootcamps.
func (s *CourseService) List(ctx context.Context, q domain.ListQuery) ([]domain.Course, int64, error) {
	ctx, span := s.tracer().Start(ctx, "List")
	defer span.End()
	return s.Courses.ListCourses(ctx, q)
}

// ListForBootcamp returns the courses of bootcamp id.
func (s *CourseService) ListForBootcamp(ctx context.Context, bootcampID string, q domain.ListQuery) ([]domain.Course, int64, error) {
	ctx, span := s.tracer().Start(ctx, "ListForBootcamp", trace.WithAttributes(attribute.String("bootcamp.id", bootcampID)))
	defer span.End()

	if _, err := s.bootcamp(ctx, bootcampID); err != nil {
		return nil, 0, err
	}
	return s.Courses.ListCourses(ctx, q.Where("bootcamp", domain.CourseFields["bootcamp"], bootcampID))
}

// Get returns course id.
func (s *CourseService) Get(ctx context.Context, id string) (*domain.Course, error) {
	ctx, span := s.tracer().Start(ctx, "Get", trace.WithAttributes(attribute.String("course.id", id)))
	defer span.End()

	if !domain.ValidID(id) {
		return nil, invalidID(id)
	}
	c, err := s.Courses.GetCourse(ctx, id)
	if err != nil {
		return nil, lookupErr("Course", id, err)
	}
	return c, nil
}

// Create adds a course to bootcamp bootcampID.
func (s *CourseService) Create(ctx context.Context, actor domain.Actor, bootcampID string, p domain.CoursePatch) (*domain.Course, error) {
	ctx, span := s.tracer().Start(ctx, "Create", trace.WithAttributes(attribute.String("bootcamp.id", bootcampID)))
	defer span.End()

	b, err := s.bootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(b.UserID) {
		return nil, forbidden(actor, "add a course to", "bootcamp", bootcampID)
	}

	c := &domain.Course{BootcampID: b.ID, UserID: actor.ID}
	p.Apply(c)
	if err := domain.Validate(c); err != nil {
		return nil, err
	}
	if err := s.Courses.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies p to course id.
func (s *CourseService) Update(ctx context.Context, actor domain.Actor, id string, p domain.CoursePatch) (*domain.Course, error) {
	ctx, span := s.tracer().Start(ctx, "Update", trace.WithAttributes(attribute.String("course.id", id)))
	defer span.End()

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(c.UserID) {
		return nil, forbidden(actor, "update", "course", id)
	}
	p.Apply(c)
	if err := domain.Validate(c); err != nil {
		return nil, err
	}
	if err := s.Courses.UpdateCourse(ctx, c); err != nil {
		return nil, lookupErr("Course", id, err)
	}
	return c, nil
}

// Delete removes course id.
func (s *CourseService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := s.tracer().Start(ctx, "Delete", trace.WithAttributes(attribute.String("course.id", id)))
	defer span.End()

	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(c.UserID) {
		return forbidden(actor, "delete", "course", id)
	}
	return lookupErr("Course", id, s.Courses.DeleteCourse(ctx, id))
}

func (s *CourseService) bootcamp(ctx context.Context, id string) (*domain.Bootcamp, error) {
	if !domain.ValidID(id) {
		return nil, invalidID(id)
	}
	b, err := s.Bootcamps.GetBootcamp(ctx, id)
	if err != nil {
		return nil, lookupErr("Bootcamp", id, err)
	}
	return b, nil
}
