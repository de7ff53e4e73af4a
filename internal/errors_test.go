package internal

import (
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("matches sentinels through WithCause and wrapping", func() {
		err := fmt.Errorf("lookup: %w", ErrIssueNotFound.WithCause(errors.New("no rows")))
		Expect(errors.Is(err, ErrIssueNotFound)).To(BeTrue())
		Expect(errors.Is(err, ErrUserNotFound)).To(BeFalse())

		appErr, ok := IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("does not mutate sentinels", func() {
		_ = ErrAccessDenied.WithDetails("x").WithCause(errors.New("y"))
		Expect(ErrAccessDenied.Details).To(BeNil())
		Expect(ErrAccessDenied.Cause).To(BeNil())
	})

	It("maps each type to its status", func() {
		Expect(NewValidationError("v", ErrCodeValidationFailed).StatusCode).To(Equal(http.StatusBadRequest))
		Expect(NewUnauthorizedError("u", ErrCodeInvalidToken).StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(NewForbiddenError("f", ErrCodeAccessDenied).StatusCode).To(Equal(http.StatusForbidden))
		Expect(NewInternalError("i", nil).StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(IsType(ErrTokenExpired, ErrorTypeUnauthorized)).To(BeTrue())
	})

	It("joins field messages for detailed output", func() {
		err := NewValidationError("Title is required", ErrCodeValidationFailed).WithDetails(ValidationErrors{
			Errors: []ValidationError{{Field: "title", Message: "Title is required"}, {Field: "category", Message: "Category is required"}},
		})
		Expect(err.GetDetailedMessage()).To(Equal("Title is required; Category is required"))
	})
})
