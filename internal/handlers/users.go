package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/audit"
	"github.com/zoomlabs/crm-server/internal/auth"
	"github.com/zoomlabs/crm-server/internal/crypto"
	"github.com/zoomlabs/crm-server/internal/models"
	"github.com/zoomlabs/crm-server/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Uname string `json:"uname" binding:"required"`
	Pwd   string `json:"pwd" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Ph    string `json:"ph"`
}

type LoginRequest struct {
	Uname    string `json:"uname" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ProfileResponse carries a user with PII already decrypted.
type ProfileResponse struct {
	UID     string         `json:"uId"`
	Name    string         `json:"name"`
	Uname   string         `json:"uname"`
	Email   string         `json:"email"`
	Ph      string         `json:"ph"`
	Role    string         `json:"role"`
	Avtr    string         `json:"avtr"`
	Job     string         `json:"job"`
	Dob     *time.Time     `json:"dob,omitempty"`
	Loc     string         `json:"loc"`
	Bio     string         `json:"bio"`
	Address string         `json:"address"`
	Country string         `json:"country"`
	Website string         `json:"website"`
	Socials datatypes.JSON `json:"socials,omitempty"`
	Skills  datatypes.JSON `json:"skills,omitempty"`
	Educ    datatypes.JSON `json:"education,omitempty"`
	WorkExp datatypes.JSON `json:"workExp,omitempty"`
	Biodata string         `json:"biodata,omitempty"`
	Sts     int            `json:"sts"`
}

const (
	adminUname       = "admin"
	defaultAdminPwd  = "Admin@123"
	maxUploadBytes   = 300 * 1024
	defaultUploadDir = "uploads"
)

// CreateAdmin is the idempotent bootstrap endpoint: it refuses to run twice.
func CreateAdmin(ctx *gin.Context) {
	var existing models.User
	err := db.DB.Where("uname = ?", adminUname).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Admin user already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking admin user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPwd), bcrypt.DefaultCost)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	email, err := crypto.Encrypt("admin@example.com")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	ph, err := crypto.Encrypt("9876543210")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	uid, err := models.NextUserID(db.DB)
	if err != nil {
		log.Printf("Failed to allocate user ID: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	admin := models.User{
		UID:   uid,
		Uname: adminUname,
		Name:  "Administrator",
		Email: email,
		Ph:    ph,
		Pwd:   string(hashed),
		Role:  models.RoleAdmin,
	}
	audit.StampCreate(&admin.AuditFields, audit.System(), ctx.ClientIP(), time.Now())

	if err := db.DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Admin user created successfully", "user": admin})
}

func CreateUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CreateUserRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var existing models.User
	err = db.DB.Where("uname = ?", body.Uname).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Database error when checking username: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Pwd), bcrypt.DefaultCost)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	email, err := crypto.Encrypt(body.Email)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	ph, err := crypto.Encrypt(body.Ph)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	uid, err := models.NextUserID(db.DB)
	if err != nil {
		log.Printf("Failed to allocate user ID: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	user := models.User{
		UID:   uid,
		Uname: body.Uname,
		Name:  body.Name,
		Email: email,
		Ph:    ph,
		Pwd:   string(hashed),
		Role:  models.RoleStaff,
	}
	audit.StampCreate(&user.AuditFields, audit.User(currentUser.UID), ctx.ClientIP(), time.Now())

	if err := db.DB.Create(&user).Error; err != nil {
		// Backstop for a concurrent signup racing the uniqueness check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
			return
		}
		log.Printf("Failed to create user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User created", "user": user})
}

func Login(ctx *gin.Context) {
	var body LoginRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var user models.User
	err := db.DB.Where("uname = ?", body.Uname).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Pwd), []byte(body.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateJWT(user.UID, user.Uname, user.Role)
	if err != nil {
		log.Printf("Failed to generate JWT: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"uId": user.UID, "name": user.Name, "role": user.Role},
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.Where("uname = ?", currentUser.Uname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	profile, err := buildProfile(user)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Decryption failed"})
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

// UpdateProfile handles the multipart profile form: scalar fields, the
// JSON-encoded nested collections, and the optional avatar/biodata uploads.
func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	updateUserFromForm(ctx, "uname = ?", currentUser.Uname, "Profile updated")
}

func UpdateUserByID(ctx *gin.Context) {
	if _, err := utils.GetCurrentUser(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	updateUserFromForm(ctx, "u_id = ?", ctx.Param("id"), "User updated successfully")
}

func updateUserFromForm(ctx *gin.Context, cond string, arg interface{}, okMessage string) {
	currentUser, _ := utils.GetCurrentUser(ctx)

	var user models.User
	if err := db.DB.Where(cond, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	updates, err := parseProfileForm(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	for column, value := range audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now()) {
		updates[column] = value
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to update user %s: %v", user.UID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Profile update failed"})
		return
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": okMessage, "user": user})
}

// parseProfileForm validates the multipart payload and returns the column
// assignments. Malformed nested JSON fails the whole update.
func parseProfileForm(ctx *gin.Context) (map[string]interface{}, error) {
	updates := map[string]interface{}{
		"name":    ctx.PostForm("name"),
		"job":     ctx.PostForm("job"),
		"bio":     ctx.PostForm("bio"),
		"loc":     ctx.PostForm("loc"),
		"country": ctx.PostForm("country"),
		"address": ctx.PostForm("address"),
		"website": ctx.PostForm("website"),
	}

	if dob := ctx.PostForm("dob"); dob != "" {
		parsed, err := parseDate(dob)
		if err != nil {
			return nil, errors.New("Invalid date of birth")
		}
		updates["dob"] = parsed
	}

	if email := ctx.PostForm("email"); email != "" {
		enc, err := crypto.Encrypt(email)
		if err != nil {
			return nil, errors.New("Invalid email")
		}
		updates["email"] = enc
	}
	if ph := ctx.PostForm("ph"); ph != "" {
		enc, err := crypto.Encrypt(ph)
		if err != nil {
			return nil, errors.New("Invalid phone")
		}
		updates["ph"] = enc
	}

	var (
		skills    []models.Skill
		education []models.Education
		workExp   []models.WorkExperience
		socials   models.Social
	)

	nested := []struct {
		field  string
		column string
		target interface{}
	}{
		{"skills", "skills", &skills},
		{"education", "education", &education},
		{"workExp", "work_exp", &workExp},
		{"socials", "socials", &socials},
	}

	for _, item := range nested {
		raw := ctx.PostForm(item.field)
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), item.target); err != nil {
			return nil, errors.New("Invalid JSON format in education, workExp, skills, or socials.")
		}
		encoded, err := json.Marshal(item.target)
		if err != nil {
			return nil, errors.New("Invalid JSON format in education, workExp, skills, or socials.")
		}
		updates[item.column] = datatypes.JSON(encoded)
	}

	if path, err := saveUpload(ctx, "imageFile", "images", []string{".jpg", ".jpeg"}); err != nil {
		return nil, err
	} else if path != "" {
		updates["avtr"] = path
	}

	if path, err := saveUpload(ctx, "pdfFile", "pdfs", []string{".pdf", ".doc", ".docx"}); err != nil {
		return nil, err
	} else if path != "" {
		updates["biodata"] = path
	}

	return updates, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// saveUpload stores one optional form file under the upload dir with a
// random name, returning the public path. Missing files are not an error.
func saveUpload(ctx *gin.Context, field, subdir string, allowedExts []string) (string, error) {
	file, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", errors.New("Invalid file upload")
	}

	if file.Size > maxUploadBytes {
		return "", errors.New("File exceeds the 300KB limit")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !extAllowed(ext, allowedExts) {
		return "", errors.New("Invalid file type for " + field)
	}

	dir := filepath.Join(uploadDir(), subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New("Failed to store file")
	}

	name := uuid.NewString() + ext
	if err := saveFormFile(ctx, file, filepath.Join(dir, name)); err != nil {
		return "", errors.New("Failed to store file")
	}

	return "/" + path.Join(defaultUploadDir, subdir, name), nil
}

func saveFormFile(ctx *gin.Context, file *multipart.FileHeader, dst string) error {
	return ctx.SaveUploadedFile(file, dst)
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return defaultUploadDir
}

func ChangePassword(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body ChangePasswordRequest
	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	var user models.User
	if err := db.DB.Where("uname = ?", currentUser.Uname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Pwd), []byte(body.OldPassword)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Incorrect old password"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	updates := audit.UpdateValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())
	updates["pwd"] = string(hashed)

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("Failed to change password for %s: %v", user.Uname, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

var userSortColumns = map[string]string{
	"name":  "name",
	"uname": "uname",
	"email": "email",
	"ph":    "ph",
	"job":   "job",
	"sts":   "sts",
	"id":    "id",
}

// GetPaginatedUsers backs the user table: search, sort and paginate the live
// users. The search term is matched case-insensitively against name and
// username, and in encrypted form against email (deterministic encryption
// makes the equality comparison meaningful).
func GetPaginatedUsers(ctx *gin.Context) {
	draw, _ := strconv.Atoi(ctx.DefaultQuery("draw", "1"))
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	sortColumn, ok := userSortColumns[ctx.Query("sortBy")]
	if !ok {
		sortColumn = "id"
	}
	sortDir := "DESC"
	if ctx.Query("sortDir") == "asc" {
		sortDir = "ASC"
	}

	query := db.DB.Model(&models.User{}).Where("dlt_sts <> ?", models.DltStsDeleted)

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		encrypted, err := crypto.Encrypt(search)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(uname) LIKE ? OR email = ?",
			pattern, pattern, encrypted,
		)
	}

	var recordsTotal int64
	if err := db.DB.Model(&models.User{}).Count(&recordsTotal).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var recordsFiltered int64
	if err := query.Count(&recordsFiltered).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var users []models.User
	if err := query.
		Order(sortColumn + " " + sortDir).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		log.Printf("Error fetching paginated users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	data := make([]gin.H, 0, len(users))
	for _, user := range users {
		email, ph, err := decryptPII(user)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		data = append(data, gin.H{
			"uId":   user.UID,
			"name":  user.Name,
			"email": email,
			"ph":    ph,
			"avtr":  user.Avtr,
			"job":   user.Job,
			"sts":   user.Sts,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"draw":            draw,
		"recordsTotal":    recordsTotal,
		"recordsFiltered": recordsFiltered,
		"data":            data,
	})
}

func GetUserByID(ctx *gin.Context) {
	var user models.User
	if err := db.DB.Where("u_id = ?", ctx.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	profile, err := buildProfile(user)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Decryption failed"})
		return
	}

	ctx.JSON(http.StatusOK, profile)
}

func SoftDeleteUser(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.Where("u_id = ?", ctx.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	if err := db.DB.Model(&user).
		Updates(audit.DeleteValues(audit.User(currentUser.UID), ctx.ClientIP(), time.Now())).Error; err != nil {
		log.Printf("Error deleting user %s: %v", user.UID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User marked as deleted", "user": user})
}

func buildProfile(user models.User) (ProfileResponse, error) {
	email, ph, err := decryptPII(user)
	if err != nil {
		return ProfileResponse{}, err
	}

	return ProfileResponse{
		UID:     user.UID,
		Name:    user.Name,
		Uname:   user.Uname,
		Email:   email,
		Ph:      ph,
		Role:    user.Role,
		Avtr:    user.Avtr,
		Job:     user.Job,
		Dob:     user.Dob,
		Loc:     user.Loc,
		Bio:     user.Bio,
		Address: user.Address,
		Country: user.Country,
		Website: user.Website,
		Socials: user.Socials,
		Skills:  user.Skills,
		Educ:    user.Education,
		WorkExp: user.WorkExp,
		Biodata: user.Biodata,
		Sts:     user.Sts,
	}, nil
}

func decryptPII(user models.User) (email, ph string, err error) {
	if user.Email != "" {
		if email, err = crypto.Decrypt(user.Email); err != nil {
			return "", "", err
		}
	}
	if user.Ph != "" {
		if ph, err = crypto.Decrypt(user.Ph); err != nil {
			return "", "", err
		}
	}
	return email, ph, nil
}
