package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/models"
	"github.com/zoomlabs/crm-server/internal/utils"
	"gorm.io/gorm"
)

type AddNoteRequest struct {
	Title string `json:"title" binding:"required"`
	Desc  string `json:"desc"`
}

type UpdateTagRequest struct {
	Tag string `json:"tag"`
}

type UpdateFavouriteRequest struct {
	IsFav bool `json:"isFav"`
}

func AddNote(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body AddNoteRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	note := models.Note{
		Title: body.Title,
		Desc:  body.Desc,
		IsFav: false,
		Tag:   "",
	}
	audit.StampCreate(&note.AuditFields, audit.User(currentUser.UID), ctx.ClientIP(), time.Now())

	if err := db.DB.Create(&note).Error; err != nil {
		log.Printf("Failed to save note: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save note"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Note saved successfully",
		"note":    note,
	})
}

func GetAllNotes(ctx *gin.Context) {
	var notes []models.Note

	if err := db.DB.
		Where("dlt_sts = ?", models.DltStsLive).
		Order("crtd_on DESC").
		Find(&notes).Error; err != nil {
		log.Printf("Failed to fetch notes: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	ctx.JSON(http.StatusOK, notes)
}

func UpdateTag(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateTagRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	updates := audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())
	updates["tag"] = body.Tag

	if err := db.DB.Model(&models.Note{}).Where("id = ?", ctx.Param("id")).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update tag"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Tag updated"})
}

func UpdateFavourite(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body UpdateFavouriteRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	updates := audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())
	updates["is_fav"] = body.IsFav

	if err := db.DB.Model(&models.Note{}).Where("id = ?", ctx.Param("id")).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update favourite status"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Favourite status updated"})
}

// DeleteNote removes the row outright. Notes are the one entity without a
// soft-delete lifecycle.
func DeleteNote(ctx *gin.Context) {
	var note models.Note
	if err := db.DB.First(&note, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Note not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error deleting note"})
		}
		return
	}

	if err := db.DB.Delete(&note).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error deleting note"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Note deleted successfully"})
}
