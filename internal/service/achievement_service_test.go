package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/score-api/internal/domain/entity"
)

func createTestScore() *entity.Score {
	return &entity.Score{
		ID:         100,
		UserID:     7,
		PP:         320,
		Accuracy:   99.2,
		MaxCombo:   1500,
		Mods:       entity.ModHidden | entity.ModDoubleTime,
		PlayMode:   entity.ModeStd,
		FullCombo:  true,
		Completed:  entity.StateBest,
	}
}

func TestAchievementService_CheckOnSubmit_GroupAnd(t *testing.T) {
	// Arrange: оба условия группы выполняются
	mockRepo := new(MockAchievementRepository)
	achievementService := NewAchievementService(mockRepo)

	ach := entity.Achievement{
		ID: 1, File: "osu-combo-1000", Name: "The Brink of Insanity",
		Conditions: []entity.AchievementCondition{
			{Field: entity.FieldMaxCombo, Op: entity.OpGte, Value: 1000, Grp: 0},
			{Field: entity.FieldMode, Op: entity.OpEq, Value: 0, Grp: 0},
		},
	}
	mockRepo.On("GetAll").Return([]entity.Achievement{ach}, nil)
	mockRepo.On("UnlockedIDs", uint(7)).Return([]uint{}, nil)
	mockRepo.On("Unlock", uint(7), uint(1)).Return(nil)

	// Act
	fresh, err := achievementService.CheckOnSubmit(createTestScore(), &entity.Stats{})

	// Assert
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, uint(1), fresh[0].ID)
	mockRepo.AssertExpectations(t)
}

func TestAchievementService_CheckOnSubmit_GroupAndFails(t *testing.T) {
	// Arrange: одно из условий группы не выполняется
	mockRepo := new(MockAchievementRepository)
	achievementService := NewAchievementService(mockRepo)

	ach := entity.Achievement{
		ID: 1,
		Conditions: []entity.AchievementCondition{
			{Field: entity.FieldMaxCombo, Op: entity.OpGte, Value: 1000, Grp: 0},
			{Field: entity.FieldMode, Op: entity.OpEq, Value: 3, Grp: 0}, // мания
		},
	}
	mockRepo.On("GetAll").Return([]entity.Achievement{ach}, nil)
	mockRepo.On("UnlockedIDs", uint(7)).Return([]uint{}, nil)

	// Act
	fresh, err := achievementService.CheckOnSubmit(createTestScore(), &entity.Stats{})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, fresh, "Условия одной группы объединяются по И")
	mockRepo.AssertExpectations(t)
}

func TestAchievementService_CheckOnSubmit_GroupsOr(t *testing.T) {
	// Arrange: первая группа проваливается, вторая проходит
	mockRepo := new(MockAchievementRepository)
	achievementService := NewAchievementService(mockRepo)

	ach := entity.Achievement{
		ID: 2, File: "osu-skill-pass-300",
		Conditions: []entity.AchievementCondition{
			{Field: entity.FieldPP, Op: entity.OpGte, Value: 9000, Grp: 0},
			{Field: entity.FieldMods, Op: entity.OpHasBit, Value: float64(entity.ModHidden), Grp: 1},
		},
	}
	mockRepo.On("GetAll").Return([]entity.Achievement{ach}, nil)
	mockRepo.On("UnlockedIDs", uint(7)).Return([]uint{}, nil)
	mockRepo.On("Unlock", uint(7), uint(2)).Return(nil)

	// Act
	fresh, err := achievementService.CheckOnSubmit(createTestScore(), &entity.Stats{})

	// Assert
	require.NoError(t, err)
	assert.Len(t, fresh, 1, "Достаточно одной прошедшей группы")
	mockRepo.AssertExpectations(t)
}

func TestAchievementService_CheckOnSubmit_NoConditions(t *testing.T) {
	// Arrange
	mockRepo := new(MockAchievementRepository)
	achievementService := NewAchievementService(mockRepo)

	mockRepo.On("GetAll").Return([]entity.Achievement{{ID: 3}}, nil)
	mockRepo.On("UnlockedIDs", uint(7)).Return([]uint{}, nil)

	// Act
	fresh, err := achievementService.CheckOnSubmit(createTestScore(), &entity.Stats{})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, fresh, "Ачивка без условий не должна открываться")
	mockRepo.AssertExpectations(t)
}

func TestAchievementService_CheckOnSubmit_AlreadyUnlocked(t *testing.T) {
	// Arrange
	mockRepo := new(MockAchievementRepository)
	achievementService := NewAchievementService(mockRepo)

	ach := entity.Achievement{
		ID: 1,
		Conditions: []entity.AchievementCondition{
			{Field: entity.FieldMaxCombo, Op: entity.OpGte, Value: 1, Grp: 0},
		},
	}
	mockRepo.On("GetAll").Return([]entity.Achievement{ach}, nil)
	mockRepo.On("UnlockedIDs", uint(7)).Return([]uint{1}, nil)

	// Act
	fresh, err := achievementService.CheckOnSubmit(createTestScore(), &entity.Stats{})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, fresh, "Повторное открытие невозможно")
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Unlock")
}

func TestAchievementService_CheckOnSubmit_UnlockFailureSkipsOne(t *testing.T) {
	// Arrange: первая ачивка не записалась, вторая должна открыться
	mockRepo := new(MockAchievementRepository)
	achievementService := NewAchievementService(mockRepo)

	cond := []entity.AchievementCondition{
		{Field: entity.FieldMaxCombo, Op: entity.OpGte, Value: 1, Grp: 0},
	}
	mockRepo.On("GetAll").Return([]entity.Achievement{
		{ID: 1, Conditions: cond},
		{ID: 2, Conditions: cond},
	}, nil)
	mockRepo.On("UnlockedIDs", uint(7)).Return([]uint{}, nil)
	mockRepo.On("Unlock", uint(7), uint(1)).Return(errors.New("deadlock"))
	mockRepo.On("Unlock", uint(7), uint(2)).Return(nil)

	// Act
	fresh, err := achievementService.CheckOnSubmit(createTestScore(), &entity.Stats{})

	// Assert
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, uint(2), fresh[0].ID)
	mockRepo.AssertExpectations(t)
}
