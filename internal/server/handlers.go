package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tordrt/mockschema/internal/codec"
	"github.com/tordrt/mockschema/internal/editor"
	"github.com/tordrt/mockschema/internal/generate"
	"github.com/tordrt/mockschema/internal/runner"
	"github.com/tordrt/mockschema/internal/schema"
)

type createTableRequest struct {
	Name string `json:"name" binding:"required"`
	// Rows is optional; a missing count keeps the default.
	Rows *int `json:"rows"`
}

type updateTableRequest struct {
	Name *string `json:"name"`
	Rows *int    `json:"rows"`
}

type createAttributeRequest struct {
	Name string `json:"name" binding:"required"`
}

type generateRequest struct {
	Mode    string `json:"mode" binding:"required"`
	Dialect string `json:"dialect"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getSchema(c *gin.Context) {
	data, err := s.ws.Export()
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to export schema")
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) putSchema(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Failed to read request body")
		return
	}

	var res *codec.Result
	if strings.Contains(c.ContentType(), "yaml") {
		res, err = codec.ImportYAML(body)
	} else {
		res, err = codec.Import(body)
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid schema document")
		return
	}

	s.ws.Replace(res.Schema)
	success(c, http.StatusOK, gin.H{"diagnostics": res.Diagnostics}, "Schema imported")
}

func (s *Server) createTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	s.dispatch(c, http.StatusCreated, "Table created", editor.TableAdded{Table: req.Name, Rows: req.Rows})
}

func (s *Server) updateTable(c *gin.Context) {
	var req updateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Name == nil && req.Rows == nil {
		fail(c, http.StatusBadRequest, nil, "Nothing to update")
		return
	}

	// Both changes apply or neither does. The row count goes first while
	// the table still has its old name.
	table := c.Param("table")
	var events []editor.Event
	if req.Rows != nil {
		events = append(events, editor.RowCountChanged{Table: table, Rows: *req.Rows})
	}
	if req.Name != nil {
		events = append(events, editor.TableRenamed{Table: table, To: *req.Name})
	}
	if _, err := s.ws.DispatchAll(events...); err != nil {
		failEdit(c, err)
		return
	}
	success(c, http.StatusOK, nil, "Table updated")
}

func (s *Server) deleteTable(c *gin.Context) {
	s.dispatch(c, http.StatusOK, "Table removed", editor.TableRemoved{Table: c.Param("table")})
}

func (s *Server) createAttribute(c *gin.Context) {
	var req createAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	ev := editor.AttributeAdded{Table: c.Param("table"), Attribute: req.Name}
	s.dispatch(c, http.StatusCreated, "Attribute created", ev)
}

func (s *Server) deleteAttribute(c *gin.Context) {
	s.dispatch(c, http.StatusOK, "Attribute removed", editor.AttributeRemoved{Target: target(c)})
}

func (s *Server) attributeForm(c *gin.Context) {
	form, err := s.ws.Form(target(c))
	if err != nil {
		failEdit(c, err)
		return
	}
	success(c, http.StatusOK, form, "")
}

func (s *Server) attributeEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	t := target(c)
	ev, err := req.toEvent(t)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid event")
		return
	}
	outcome, err := s.ws.Dispatch(ev)
	if err != nil {
		failEdit(c, err)
		return
	}

	// A rename moves the form to the new name.
	if r, ok := ev.(editor.AttributeRenamed); ok {
		t.Attribute = r.To
	}
	form, err := s.ws.Form(t)
	if err != nil {
		failEdit(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"repairs": outcome.Repairs, "form": form}, "Event applied")
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	mode, err := runner.ParseMode(req.Mode)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid mode")
		return
	}
	run := runner.Request{
		SchemaPath: s.ws.Path(),
		Mode:       mode,
		Dialect:    generate.Dialect(req.Dialect),
	}
	if err := run.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid generator request")
		return
	}
	if s.runner == nil {
		fail(c, http.StatusServiceUnavailable, nil, "Generator is not configured")
		return
	}

	ctx := c.Request.Context()
	if _, err := s.runner.CheckInterpreter(ctx, s.minVersion); err != nil {
		fail(c, http.StatusServiceUnavailable, err, "Interpreter preflight failed")
		return
	}

	report, problems, err := s.runGenerator(ctx, run)
	if len(problems) > 0 {
		reply(c, http.StatusUnprocessableEntity, "error", gin.H{"problems": problemStrings(problems)}, "Schema has problems", nil)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to run generator")
		return
	}
	if report.Failed() {
		reply(c, http.StatusBadGateway, "error", report, "Generator reported an error", nil)
		return
	}
	success(c, http.StatusOK, report, "Generation finished")
}

// runGenerator saves the validated schema and runs the generator on it.
// Runs are serialized because they share the workspace file. A YAML
// workspace is handed to the generator as a JSON copy.
func (s *Server) runGenerator(ctx context.Context, req runner.Request) (*runner.Report, []schema.Problem, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	problems, err := s.ws.SaveValid()
	if len(problems) > 0 || err != nil {
		return nil, problems, err
	}

	input, cleanup, err := codec.JSONInput(req.SchemaPath)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()
	req.SchemaPath = input

	report, err := s.runner.Run(ctx, req)
	return report, nil, err
}

func (s *Server) dispatch(c *gin.Context, code int, message string, ev editor.Event) {
	outcome, err := s.ws.Dispatch(ev)
	if err != nil {
		failEdit(c, err)
		return
	}
	success(c, code, outcome, message)
}

func target(c *gin.Context) editor.Target {
	return editor.Target{Table: c.Param("table"), Attribute: c.Param("attribute")}
}

// failEdit maps editor and model errors to HTTP statuses.
func failEdit(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schema.ErrNotFound):
		fail(c, http.StatusNotFound, err, "Not found")
	case errors.Is(err, schema.ErrDuplicateName):
		fail(c, http.StatusConflict, err, "Name already in use")
	case errors.Is(err, editor.ErrInputDisabled), errors.Is(err, editor.ErrNotOffered):
		fail(c, http.StatusUnprocessableEntity, err, "Edit not allowed")
	default:
		fail(c, http.StatusBadRequest, err, "Invalid edit")
	}
}

func problemStrings(problems []schema.Problem) []string {
	out := make([]string, len(problems))
	for i, p := range problems {
		out[i] = p.String()
	}
	return out
}
