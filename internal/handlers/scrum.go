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
	"github.com/zoomlabs/crm-server/internal/services"
	"github.com/zoomlabs/crm-server/internal/utils"
	"gorm.io/gorm"
)

type ListRequest struct {
	LstName string `json:"lstName" binding:"required"`
}

type TaskRequest struct {
	TskName string `json:"tskName" binding:"required"`
	TskDesc string `json:"tskDesc"`
	ListID  uint   `json:"listId"`
}

type BoardTask struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Date  string `json:"date"`
	Type  string `json:"type"`
}

type BoardList struct {
	ID    uint        `json:"id"`
	Title string      `json:"title"`
	Tasks []BoardTask `json:"tasks"`
}

// GetScrumBoard returns the live lists newest-first, each carrying its live
// tasks. Tasks are grouped through a single map pass instead of rescanning
// the task slice per list.
func GetScrumBoard(ctx *gin.Context) {
	var lists []models.ScrumList
	if err := db.DB.
		Where("dlt_sts = ?", models.DltStsLive).
		Order("crtd_on DESC").
		Find(&lists).Error; err != nil {
		log.Printf("Failed to fetch scrum board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	listIDs := make([]uint, len(lists))
	for i, list := range lists {
		listIDs[i] = list.ID
	}

	var tasks []models.ScrumTask
	if len(listIDs) > 0 {
		if err := db.DB.
			Where("list_id IN ? AND dlt_sts = ?", listIDs, models.DltStsLive).
			Order("crtd_on DESC").
			Find(&tasks).Error; err != nil {
			log.Printf("Failed to fetch scrum tasks: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
	}

	tasksByList := make(map[uint][]BoardTask, len(lists))
	for _, task := range tasks {
		tasksByList[task.ListID] = append(tasksByList[task.ListID], BoardTask{
			ID:    task.ID,
			Title: task.TskName,
			Text:  task.TskDesc,
			Date:  task.CrtdOn.Format("02/01/2006"),
			Type:  "simple",
		})
	}

	board := make([]BoardList, len(lists))
	for i, list := range lists {
		entries := tasksByList[list.ID]
		if entries == nil {
			entries = []BoardTask{}
		}
		board[i] = BoardList{ID: list.ID, Title: list.LstName, Tasks: entries}
	}

	ctx.JSON(http.StatusOK, board)
}

func AddList(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ListRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	list := models.ScrumList{LstName: body.LstName}
	audit.StampCreate(&list.AuditFields, audit.User(currentUser.UID), ctx.ClientIP(), time.Now())

	if err := db.DB.Create(&list).Error; err != nil {
		log.Printf("Failed to add list: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Add list failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "List added successfully", "list": list})
}

func EditList(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ListRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var list models.ScrumList
	if err := db.DB.First(&list, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "List not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Update list failed"})
		}
		return
	}

	updates := audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())
	updates["lst_name"] = body.LstName

	if err := db.DB.Model(&list).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Update list failed"})
		return
	}

	if err := db.DB.First(&list, list.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Update list failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "List updated", "list": list})
}

// DeleteList soft-deletes a list and cascades to every task it owns.
func DeleteList(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var list models.ScrumList
	if err := db.DB.First(&list, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "List not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Delete list failed"})
		}
		return
	}

	actor := audit.User(currentUser.UID)
	ip := ctx.ClientIP()
	now := time.Now()

	if err := db.DB.Model(&list).Updates(audit.DeleteValues(actor, ip, now)).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Delete list failed"})
		return
	}

	if err := services.CascadeSoftDelete(db.DB, &models.ScrumTask{}, "list_id = ?", list.ID, actor, ip, now); err != nil {
		log.Printf("Failed to cascade delete tasks for list %d: %v", list.ID, err)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "List deleted", "list": list})
}

func AddTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body TaskRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	task := models.ScrumTask{
		TskName: body.TskName,
		TskDesc: body.TskDesc,
		ListID:  body.ListID,
	}
	audit.StampCreate(&task.AuditFields, audit.User(currentUser.UID), ctx.ClientIP(), time.Now())

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to add task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Add task failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task added", "task": task})
}

func EditTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body TaskRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var task models.ScrumTask
	if err := db.DB.First(&task, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Edit task failed"})
		}
		return
	}

	updates := audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())
	updates["tsk_name"] = body.TskName
	updates["tsk_desc"] = body.TskDesc

	if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Edit task failed"})
		return
	}

	if err := db.DB.First(&task, task.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Edit task failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task updated", "task": task})
}

func DeleteTask(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var task models.ScrumTask
	if err := db.DB.First(&task, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Delete task failed"})
		}
		return
	}

	if err := db.DB.Model(&task).Updates(audit.DeleteValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Delete task failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted", "task": task})
}

// ClearTasksFromList bulk soft-deletes every live task under one list,
// leaving the list itself in place.
func ClearTasksFromList(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := utils.ParseID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := services.CascadeSoftDelete(db.DB, &models.ScrumTask{}, "list_id = ?", id,
		audit.User(currentUser.UID), ctx.ClientIP(), time.Now()); err != nil {
		log.Printf("Failed to clear tasks for list %d: %v", id, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Clear tasks failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All tasks cleared successfully"})
}
