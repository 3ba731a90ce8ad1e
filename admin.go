package main

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func init() {
	// report binding errors by their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// validationError is returned by prepare hooks and rendered as 400.
type validationError map[string]string

func (v validationError) Error() string {
	parts := make([]string, 0, len(v))
	for k, m := range v {
		parts = append(parts, k+": "+m)
	}
	return strings.Join(parts, "; ")
}

// ruleError is a business rule refusal (singleton rules), rendered as 403.
type ruleError struct{ error }

func (e ruleError) Unwrap() error { return e.error }

// filterFunc narrows a list query by a query string value.
type filterFunc func(q *gorm.DB, value string) (*gorm.DB, error)

type action struct {
	Label string
	// Apply updates the rows with ids and returns how many changed.
	Apply func(tx *gorm.DB, ids []uint) (int64, error)
	// Message formats the result, with the affected count as its verb.
	Message string
}

// resource wires list/search/filter/CRUD/bulk-action endpoints for one model.
type resource[T any] struct {
	Name    string
	Label   string
	PerPage int
	// Search holds SQL conditions with a single "LIKE ?" placeholder for the pattern.
	Search  []string
	Filters map[string]filterFunc
	// Ordering is the set of columns a client may sort by with ?ordering=[-]col.
	Ordering     []string
	DefaultOrder func(q *gorm.DB) *gorm.DB
	Preload      []string
	Actions      map[string]action

	New          func() T
	Prepare      func(tx *gorm.DB, item *T) error
	AfterSave    func(tx *gorm.DB, item *T) error
	CanAdd       func(tx *gorm.DB) error
	CanDelete    func(tx *gorm.DB, item *T) error
	BeforeDelete func(tx *gorm.DB, item *T) error
	Present      func(tx *gorm.DB, items []T) (any, error)
}

// adminResource is the type-erased view used by the admin index.
type adminResource interface {
	path() string
	label() string
	count(gdb *gorm.DB) (int64, error)
	routes(g *gin.RouterGroup)
}

func (r *resource[T]) path() string  { return r.Name }
func (r *resource[T]) label() string { return r.Label }

func (r *resource[T]) count(gdb *gorm.DB) (int64, error) {
	var n int64
	err := gdb.Model(new(T)).Count(&n).Error
	return n, err
}

func (r *resource[T]) routes(g *gin.RouterGroup) {
	rg := g.Group("/" + r.Name)
	rg.GET("", r.list)
	rg.POST("", r.create)
	rg.GET("/:id", r.get)
	rg.PUT("/:id", r.update)
	rg.DELETE("/:id", r.remove)
	if len(r.Actions) > 0 {
		rg.GET("/actions", r.listActions)
		rg.POST("/actions", r.runAction)
	}
}

func (r *resource[T]) newItem() T {
	if r.New != nil {
		return r.New()
	}
	var zero T
	return zero
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *resource[T]) applySearch(q *gorm.DB, term string) *gorm.DB {
	if len(r.Search) == 0 {
		return q
	}
	cond := "(" + strings.ReplaceAll(strings.Join(r.Search, " OR "), "LIKE ?", `LIKE ? ESCAPE '\'`) + ")"
	for _, word := range strings.Fields(term) {
		like := "%" + likeEscaper.Replace(strings.ToLower(word)) + "%"
		args := make([]any, len(r.Search))
		for i := range args {
			args[i] = like
		}
		q = q.Where(cond, args...)
	}
	return q
}

func (r *resource[T]) applyOrdering(q *gorm.DB, ordering string) (*gorm.DB, error) {
	if ordering == "" {
		if r.DefaultOrder != nil {
			return r.DefaultOrder(q), nil
		}
		return q.Order("id"), nil
	}
	col, desc := strings.TrimPrefix(ordering, "-"), strings.HasPrefix(ordering, "-")
	for _, allowed := range r.Ordering {
		if allowed == col {
			return q.Order(orderCol(col, desc)).Order("id"), nil
		}
	}
	return nil, validationError{"ordering": fmt.Sprintf("cannot order by %q", col)}
}

func (r *resource[T]) present(tx *gorm.DB, items []T) (any, error) {
	if r.Present != nil {
		return r.Present(tx, items)
	}
	return items, nil
}

func (r *resource[T]) preload(q *gorm.DB) *gorm.DB {
	for _, p := range r.Preload {
		q = q.Preload(p)
	}
	return q
}

func (r *resource[T]) list(c *gin.Context) {
	q := r.applySearch(db.Model(new(T)), c.Query("q"))
	for param, f := range r.Filters {
		v := c.Query(param)
		if v == "" {
			continue
		}
		var err error
		if q, err = f(q, v); err != nil {
			respondError(c, err)
			return
		}
	}
	base := q.Session(&gorm.Session{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		serverError(c, err)
		return
	}
	ordered, err := r.applyOrdering(base, c.Query("ordering"))
	if err != nil {
		respondError(c, err)
		return
	}
	perPage := r.PerPage
	if perPage == 0 {
		perPage = 100
	}
	page := pageParam(c)
	items := []T{}
	if err := r.preload(ordered).Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
		serverError(c, err)
		return
	}
	rows, err := r.present(db, items)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     total,
		"page":      page,
		"num_pages": numPages(total, perPage),
		"results":   rows,
	})
}

func (r *resource[T]) load(c *gin.Context, tx *gorm.DB) (T, bool) {
	var item T
	id, ok := idParam(c)
	if !ok {
		notFound(c)
		return item, false
	}
	if err := r.preload(tx).First(&item, id).Error; err != nil {
		if isNotFound(err) {
			notFound(c)
		} else {
			serverError(c, err)
		}
		return item, false
	}
	return item, true
}

func (r *resource[T]) respondOne(c *gin.Context, status int, item T) {
	rows, err := r.present(db, []T{item})
	if err != nil {
		serverError(c, err)
		return
	}
	if v := reflect.ValueOf(rows); v.Kind() == reflect.Slice && v.Len() == 1 {
		c.JSON(status, v.Index(0).Interface())
		return
	}
	c.JSON(status, rows)
}

func (r *resource[T]) get(c *gin.Context) {
	item, ok := r.load(c, db)
	if !ok {
		return
	}
	r.respondOne(c, http.StatusOK, item)
}

func (r *resource[T]) create(c *gin.Context) {
	item := r.newItem()
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBindError(c, err)
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if r.CanAdd != nil {
			if err := r.CanAdd(tx); err != nil {
				return err
			}
		}
		return r.save(tx, &item, true)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	reloaded, err := r.reload(item)
	if err != nil {
		serverError(c, err)
		return
	}
	r.respondOne(c, http.StatusCreated, reloaded)
}

func (r *resource[T]) update(c *gin.Context) {
	item, ok := r.load(c, db)
	if !ok {
		return
	}
	id := recordID(item)
	if err := c.ShouldBindJSON(&item); err != nil {
		respondBindError(c, err)
		return
	}
	// the path decides which row is written
	reflect.ValueOf(&item).Elem().FieldByName("ID").SetUint(uint64(id))
	err := db.Transaction(func(tx *gorm.DB) error {
		return r.save(tx, &item, false)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	reloaded, err := r.reload(item)
	if err != nil {
		serverError(c, err)
		return
	}
	r.respondOne(c, http.StatusOK, reloaded)
}

func (r *resource[T]) save(tx *gorm.DB, item *T, isNew bool) error {
	if r.Prepare != nil {
		if err := r.Prepare(tx, item); err != nil {
			return err
		}
	}
	q := tx.Omit(clause.Associations)
	var err error
	if isNew {
		err = q.Create(item).Error
	} else {
		err = q.Save(item).Error
	}
	if err != nil {
		return err
	}
	if r.AfterSave != nil {
		return r.AfterSave(tx, item)
	}
	return nil
}

// reload fetches item again with its preloads, after a save.
func (r *resource[T]) reload(item T) (T, error) {
	var out T
	err := r.preload(db).First(&out, recordID(item)).Error
	return out, err
}

func recordID(item any) uint {
	v := reflect.Indirect(reflect.ValueOf(item))
	return uint(v.FieldByName("ID").Uint())
}

func (r *resource[T]) remove(c *gin.Context) {
	item, ok := r.load(c, db)
	if !ok {
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if r.CanDelete != nil {
			if err := r.CanDelete(tx, &item); err != nil {
				return err
			}
		}
		if r.BeforeDelete != nil {
			if err := r.BeforeDelete(tx, &item); err != nil {
				return err
			}
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": r.Label + " deleted"})
}

func (r *resource[T]) listActions(c *gin.Context) {
	out := make(map[string]string, len(r.Actions))
	for name, a := range r.Actions {
		out[name] = a.Label
	}
	c.JSON(http.StatusOK, gin.H{"actions": out})
}

func (r *resource[T]) runAction(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
		IDs    []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	a, ok := r.Actions[req.Action]
	if !ok {
		respondError(c, validationError{"action": fmt.Sprintf("unknown action %q", req.Action)})
		return
	}
	var n int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = a.Apply(tx.Model(new(T)), req.IDs)
		return err
	})
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n, "message": fmt.Sprintf(a.Message, n)})
}

// updateField builds a bulk action that sets one column on the selected rows.
func updateField(column string, value any) func(tx *gorm.DB, ids []uint) (int64, error) {
	return func(tx *gorm.DB, ids []uint) (int64, error) {
		res := tx.Where("id IN ?", ids).Update(column, value)
		return res.RowsAffected, res.Error
	}
}

func respondError(c *gin.Context, err error) {
	var verr validationError
	var rerr ruleError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr})
	case errors.As(err, &rerr):
		c.JSON(http.StatusForbidden, gin.H{"error": rerr.Error()})
	case isUniqueConstraintError(err):
		c.JSON(http.StatusConflict, gin.H{"error": "a record with the same unique value already exists"})
	default:
		serverError(c, err)
	}
}

// respondBindError reports a request body that could not be decoded or
// failed its binding tags. Both are client errors.
func respondBindError(c *gin.Context, err error) {
	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		fields := validationError{}
		for _, fe := range bindErrs {
			fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

func adminIndexHandler(c *gin.Context) {
	type entry struct {
		Name  string `json:"name"`
		Label string `json:"label"`
		URL   string `json:"url"`
		Count int64  `json:"count"`
	}
	out := make([]entry, 0, len(adminResources))
	for _, r := range adminResources {
		n, err := r.count(db)
		if err != nil {
			serverError(c, err)
			return
		}
		out = append(out, entry{Name: r.path(), Label: r.label(), URL: "/admin/api/" + r.path(), Count: n})
	}
	c.JSON(http.StatusOK, gin.H{"title": "Portfolio administration", "resources": out})
}

func setupAdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.POST("/login", adminLoginHandler)
	admin.POST("/logout", adminLogoutHandler)

	api := admin.Group("/api")
	api.Use(adminAuthMiddleware())
	api.GET("/", adminIndexHandler)
	for _, res := range adminResources {
		res.routes(api)
	}
}
