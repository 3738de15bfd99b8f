package restapi

import (
	"context"
	"net/http"

	"github.com/realangry/schoolweb/core/student"
)

// StudentsClient maps to the /students resource.
type StudentsClient struct {
	c *Client
}

func (s *StudentsClient) List(ctx context.Context) ([]student.Student, error) {
	var res struct {
		Students []student.Student `json:"students"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/students", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Students, nil
}

func (s *StudentsClient) Create(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	var res struct {
		Data student.Student `json:"data"`
	}
	if err := s.c.do(ctx, http.MethodPost, "/students", nil, ns, &res); err != nil {
		return student.Student{}, err
	}
	return res.Data, nil
}

func (s *StudentsClient) Update(ctx context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	var res struct {
		Data student.Student `json:"data"`
	}
	if err := s.c.do(ctx, http.MethodPut, "/students/"+id, nil, us, &res); err != nil {
		return student.Student{}, err
	}
	return res.Data, nil
}

func (s *StudentsClient) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/students/"+id, nil, nil, nil)
}
