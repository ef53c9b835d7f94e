package domain

import "errors"

// Hero errors
var (
	ErrHeroNotFound   = errors.New("hero not found")
	ErrNicknameExists = errors.New("nickname already exists")
)

// Hero validation errors
var (
	ErrMissingField       = errors.New("required field is empty")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidSkillRating = errors.New("skill rating must be between 1 and 5")
)
