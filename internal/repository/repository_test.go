package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)

	err := translate(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
	assert.NoError(t, translate(nil))
}
