package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"portfolio/models"
	"portfolio/pkg/flash"
	"portfolio/pkg/mailer"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgContactInvalid = "Please correct the errors in the form."
	msgContactSent    = "Thank you! Your message has been sent. I will get back to you soon."
)

// mail delivers contact form email; set from EMAIL_BACKEND at startup.
var mail mailer.Mailer = mailer.Console{}

var contactProjectTypes = []models.Choice{
	{Value: "web", Label: "Web application"},
	{Value: "backend", Label: "Backend / API"},
	{Value: "bot", Label: "Bot or automation"},
	{Value: "consulting", Label: "Consulting"},
	{Value: "other", Label: "Other"},
}

var contactBudgets = []models.Choice{
	{Value: "lt_1k", Label: "Under $1,000"},
	{Value: "1k_5k", Label: "$1,000 – $5,000"},
	{Value: "5k_10k", Label: "$5,000 – $10,000"},
	{Value: "gt_10k", Label: "Over $10,000"},
	{Value: "discuss", Label: "To be discussed"},
}

// ContactForm is a submitted contact form. Nothing is persisted.
type ContactForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Email       string `form:"email" validate:"required,email"`
	Subject     string `form:"subject" validate:"required,max=200"`
	ProjectType string `form:"project_type" validate:"omitempty,oneof=web backend bot consulting other"`
	Budget      string `form:"budget" validate:"omitempty,oneof=lt_1k 1k_5k 5k_10k gt_10k discuss"`
	Message     string `form:"message" validate:"required"`
	Privacy     bool   `form:"privacy" validate:"required"`
}

// FieldErrors maps a form field name to its error messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

var contactValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// contactFormFromRequest reads the posted fields, trimming surrounding whitespace.
func contactFormFromRequest(c *gin.Context) ContactForm {
	field := func(k string) string { return strings.TrimSpace(c.PostForm(k)) }
	return ContactForm{
		Name:        field("name"),
		Email:       field("email"),
		Subject:     field("subject"),
		ProjectType: field("project_type"),
		Budget:      field("budget"),
		Message:     field("message"),
		Privacy:     checkbox(field("privacy")),
	}
}

func checkbox(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Validate returns the field errors of f, empty when f is valid.
func (f ContactForm) Validate() FieldErrors {
	errs := FieldErrors{}
	err := contactValidator.Struct(f)
	var verrs validator.ValidationErrors
	if err == nil {
		return errs
	}
	if !errors.As(err, &verrs) {
		errs.Add("__all__", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "privacy" {
			return "You must agree to the processing of personal data."
		}
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	default:
		return "Invalid value."
	}
}

func notificationMessage(f ContactForm) mailer.Message {
	var b strings.Builder
	b.WriteString("New message from the portfolio contact form\n\n")
	fmt.Fprintf(&b, "Name: %s\n", f.Name)
	fmt.Fprintf(&b, "Email: %s\n", f.Email)
	fmt.Fprintf(&b, "Subject: %s\n", f.Subject)
	fmt.Fprintf(&b, "Project type: %s\n", choiceOrDash(contactProjectTypes, f.ProjectType))
	fmt.Fprintf(&b, "Budget: %s\n", choiceOrDash(contactBudgets, f.Budget))
	fmt.Fprintf(&b, "Privacy consent: %t\n\n", f.Privacy)
	b.WriteString("Message:\n")
	b.WriteString(f.Message)
	b.WriteString("\n")
	return mailer.Message{
		From:    cfg.DefaultFromEmail,
		To:      []string{cfg.AdminEmail},
		ReplyTo: f.Email,
		Subject: "Portfolio contact: " + f.Subject,
		Body:    b.String(),
	}
}

func autoReplyMessage(f ContactForm) mailer.Message {
	body := fmt.Sprintf("Hello, %s!\n\n"+
		"Thank you for your message %q. I have received it and will reply as soon as possible.\n\n"+
		"This is an automatic reply, there is no need to answer it.\n", f.Name, f.Subject)
	return mailer.Message{
		From:    cfg.DefaultFromEmail,
		To:      []string{f.Email},
		Subject: "Thank you for your message",
		Body:    body,
	}
}

func choiceOrDash(choices []models.Choice, v string) string {
	if v == "" {
		return "-"
	}
	return models.Label(choices, v)
}

func contactFormHandler(c *gin.Context) {
	renderContact(c, ContactForm{}, nil, nil)
}

func renderContact(c *gin.Context, form ContactForm, errs FieldErrors, msgs []flash.Message) {
	renderPage(c, http.StatusOK, "contact.html", gin.H{
		"form":         form,
		"errors":       errs,
		"messages":     msgs,
		"projectTypes": contactProjectTypes,
		"budgets":      contactBudgets,
	})
}

// contactSubmitHandler validates the form and sends the notification and
// the auto-reply. A failed notification is reported to the visitor; a failed
// auto-reply is only logged.
func contactSubmitHandler(c *gin.Context) {
	form := contactFormFromRequest(c)
	if errs := form.Validate(); len(errs) > 0 {
		contactSubmissions.WithLabelValues("invalid").Inc()
		renderContact(c, form, errs, []flash.Message{{Level: flash.Error, Text: msgContactInvalid}})
		return
	}

	ctx := c.Request.Context()
	if err := mail.Send(ctx, notificationMessage(form)); err != nil {
		contactSubmissions.WithLabelValues("send_failed").Inc()
		slog.Error("contact notification failed", "err", err)
		flashes.Add(c, flash.Error, "Error sending message: "+err.Error())
	} else {
		contactSubmissions.WithLabelValues("sent").Inc()
		flashes.Add(c, flash.Success, msgContactSent)
		if err := mail.Send(ctx, autoReplyMessage(form)); err != nil {
			autoReplyFailures.Inc()
			slog.Warn("contact auto-reply failed", "err", err)
		}
	}
	c.Redirect(http.StatusSeeOther, "/contact/")
}
