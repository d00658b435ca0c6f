package service

import "errors"

var (
	// ErrTrackNotFound indicates the requested track does not exist.
	ErrTrackNotFound = errors.New("track not found")
	// ErrProjectNotFound indicates the referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrStepNotFound indicates the referenced step does not exist.
	ErrStepNotFound = errors.New("step not found")
	// ErrStepProjectMismatch indicates the step belongs to another project.
	ErrStepProjectMismatch = errors.New("step does not belong to project")
	// ErrDeliverableNotFound indicates the referenced deliverable does not exist.
	ErrDeliverableNotFound = errors.New("deliverable not found")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrProjectLocked indicates the student has not unlocked the project yet.
	ErrProjectLocked = errors.New("project is locked")

	// ErrSubmissionURLRequired indicates a LINK or GITHUB deliverable was
	// submitted without a URL.
	ErrSubmissionURLRequired = errors.New("submission url is required for this deliverable")
	// ErrSubmissionTextRequired indicates a TEXT deliverable was submitted
	// without text content.
	ErrSubmissionTextRequired = errors.New("submission text is required for this deliverable")
	// ErrSubmissionFileRequired indicates a FILE deliverable was submitted
	// without an uploaded file.
	ErrSubmissionFileRequired = errors.New("submission file is required for this deliverable")
	// ErrSubmissionConflict indicates a resubmission was attempted while the
	// latest submission is still pending or already approved.
	ErrSubmissionConflict = errors.New("an active submission already exists for this deliverable")

	// ErrFeedbackRequired indicates a rejection without feedback.
	ErrFeedbackRequired = errors.New("feedback is required when rejecting a submission")
	// ErrInvalidReviewState indicates a decision on a submission that is no
	// longer pending.
	ErrInvalidReviewState = errors.New("submission is not pending review")

	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided seed token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)
