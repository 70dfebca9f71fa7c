package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connectly/backend/internal/auth"
	"github.com/connectly/backend/internal/cache"
	"github.com/connectly/backend/internal/feed"
	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/models"
)

// HandlersTestSuite runs the API against a sqlite database and the
// in-memory cache, with a header-based stand-in for the bearer auth.
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	cache    *cache.Memory
	router   *gin.Engine
	handlers *Handlers

	alice *models.User
	bob   *models.User
	admin *models.User
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) SetupTest() {
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}, &models.Follow{},
	))

	suite.db = db
	suite.cache = cache.NewMemory()

	feedSvc := feed.NewService(db, suite.cache, time.Minute)
	authSvc := auth.NewService(db, []byte("test-secret"))
	suite.handlers = NewHandlers(db, feedSvc, authSvc)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	// Header-based auth stand-in: X-User-ID selects the acting user.
	testAuth := func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Set("user_id", user.ID)
		c.Set("user_role", string(user.Role))
		c.Next()
	}

	suite.handlers.RegisterRoutes(suite.router.Group("/api/v1"), testAuth)

	suite.alice = suite.createUser("alice", models.RoleUser)
	suite.bob = suite.createUser("bob", models.RoleUser)
	suite.admin = suite.createUser("root", models.RoleAdmin)
}

func (suite *HandlersTestSuite) createUser(username string, role models.Role) *models.User {
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(suite.T(), suite.db.Create(u).Error)
	return u
}

func (suite *HandlersTestSuite) request(method, path string, as *models.User, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("X-User-ID", as.ID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), out))
}

func (suite *HandlersTestSuite) createPost(as *models.User, content string, privacy models.Privacy) models.Post {
	w := suite.request("POST", "/api/v1/posts", as, gin.H{
		"content": content,
		"privacy": privacy,
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	suite.decode(w, &post)
	return post
}

func (suite *HandlersTestSuite) followViaAPI(follower, followed *models.User) {
	w := suite.request("POST", "/api/v1/users/"+followed.ID+"/follow", follower, nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
}

// --- auth ---

func (suite *HandlersTestSuite) TestRegisterAndLogin() {
	w := suite.request("POST", "/api/v1/auth/register", nil, gin.H{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "supersecret1",
		"name":     "Carol",
	})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	var reg auth.AuthResponse
	suite.decode(w, &reg)
	suite.NotEmpty(reg.Token)
	suite.Equal("carol", reg.User.Username)
	suite.Equal(models.RoleUser, reg.User.Role)

	w = suite.request("POST", "/api/v1/auth/login", nil, gin.H{
		"email":    "carol@example.com",
		"password": "supersecret1",
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request("POST", "/api/v1/auth/login", nil, gin.H{
		"email":    "carol@example.com",
		"password": "wrongpassword",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestRegisterDuplicateEmail() {
	body := gin.H{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "supersecret1",
	}
	w := suite.request("POST", "/api/v1/auth/register", nil, body)
	suite.Equal(http.StatusCreated, w.Code)

	body["username"] = "carol2"
	w = suite.request("POST", "/api/v1/auth/register", nil, body)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestUnauthenticatedRequestsRejected() {
	w := suite.request("GET", "/api/v1/feed", nil, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- posts ---

func (suite *HandlersTestSuite) TestCreateAndGetPost() {
	post := suite.createPost(suite.alice, "hello world", models.PrivacyPublic)

	w := suite.request("GET", "/api/v1/posts/"+post.ID, suite.bob, nil)
	suite.Equal(http.StatusOK, w.Code)

	var got models.Post
	suite.decode(w, &got)
	suite.Equal("hello world", got.Content)
	suite.Equal("alice", got.AuthorUsername)
}

func (suite *HandlersTestSuite) TestPrivatePostHiddenFromOthers() {
	post := suite.createPost(suite.alice, "secret", models.PrivacyPrivate)

	w := suite.request("GET", "/api/v1/posts/"+post.ID, suite.bob, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request("GET", "/api/v1/posts/"+post.ID, suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestFollowersPostVisibility() {
	post := suite.createPost(suite.alice, "for my people", models.PrivacyFollowers)

	w := suite.request("GET", "/api/v1/posts/"+post.ID, suite.bob, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	suite.followViaAPI(suite.bob, suite.alice)

	w = suite.request("GET", "/api/v1/posts/"+post.ID, suite.bob, nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestVisibilityCheckFailureIsServerError() {
	post := suite.createPost(suite.alice, "gated", models.PrivacyFollowers)

	// With the follows table gone the visibility check cannot run; that
	// must surface as a server error, not read as "not following".
	require.NoError(suite.T(), suite.db.Migrator().DropTable(&models.Follow{}))

	w := suite.request("GET", "/api/v1/posts/"+post.ID, suite.bob, nil)
	suite.Equal(http.StatusInternalServerError, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePostValidation() {
	w := suite.request("POST", "/api/v1/posts", suite.alice, gin.H{"content": "   "})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w = suite.request("POST", "/api/v1/posts", suite.alice, gin.H{
		"content": "x",
		"privacy": "friends-only",
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestDeletePostPermissions() {
	post := suite.createPost(suite.alice, "deletable", models.PrivacyPublic)

	w := suite.request("DELETE", "/api/v1/posts/"+post.ID, suite.bob, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("DELETE", "/api/v1/posts/"+post.ID, suite.admin, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/posts/"+post.ID, suite.alice, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// --- likes ---

func (suite *HandlersTestSuite) TestLikeToggle() {
	post := suite.createPost(suite.alice, "likeable", models.PrivacyPublic)

	w := suite.request("POST", "/api/v1/posts/"+post.ID+"/like", suite.bob, nil)
	suite.Equal(http.StatusCreated, w.Code)

	var resp struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}
	suite.decode(w, &resp)
	suite.True(resp.Liked)
	suite.Equal(int64(1), resp.LikeCount)

	// Second call unlikes: net zero.
	w = suite.request("POST", "/api/v1/posts/"+post.ID+"/like", suite.bob, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.False(resp.Liked)
	suite.Equal(int64(0), resp.LikeCount)
}

func (suite *HandlersTestSuite) TestBatchLikeAtomicity() {
	p1 := suite.createPost(suite.alice, "one", models.PrivacyPublic)
	p2 := suite.createPost(suite.alice, "two", models.PrivacyPublic)

	w := suite.request("POST", "/api/v1/posts/likes/batch", suite.bob, gin.H{
		"post_ids": []string{p1.ID, "does-not-exist", p2.ID},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.Like{}).Where("user_id = ?", suite.bob.ID).Count(&count)
	suite.Equal(int64(0), count, "failed batch must write no likes")

	w = suite.request("POST", "/api/v1/posts/likes/batch", suite.bob, gin.H{
		"post_ids": []string{p1.ID, p2.ID},
	})
	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		Liked     int `json:"liked"`
		Requested int `json:"requested"`
	}
	suite.decode(w, &resp)
	suite.Equal(2, resp.Liked)
	suite.Equal(2, resp.Requested)
}

func (suite *HandlersTestSuite) TestBatchLikeRespectsPostVisibility() {
	hidden := suite.createPost(suite.alice, "hidden", models.PrivacyPrivate)
	open := suite.createPost(suite.alice, "open", models.PrivacyPublic)

	// The single-like path 404s the hidden post.
	w := suite.request("POST", "/api/v1/posts/"+hidden.ID+"/like", suite.bob, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	// The batch path must fail the same request and write nothing, even
	// when other ids in the batch are likeable.
	w = suite.request("POST", "/api/v1/posts/likes/batch", suite.bob, gin.H{
		"post_ids": []string{open.ID, hidden.ID},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.Like{}).Where("user_id = ?", suite.bob.ID).Count(&count)
	suite.Equal(int64(0), count, "rejected batch must write no likes")

	// Followers-only posts become batch-likeable once the edge exists.
	gated := suite.createPost(suite.alice, "gated", models.PrivacyFollowers)
	w = suite.request("POST", "/api/v1/posts/likes/batch", suite.bob, gin.H{
		"post_ids": []string{gated.ID},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	suite.followViaAPI(suite.bob, suite.alice)
	w = suite.request("POST", "/api/v1/posts/likes/batch", suite.bob, gin.H{
		"post_ids": []string{gated.ID},
	})
	suite.Equal(http.StatusOK, w.Code)
}

// --- comments ---

func (suite *HandlersTestSuite) TestCommentsOneLevelNesting() {
	post := suite.createPost(suite.alice, "discuss", models.PrivacyPublic)

	w := suite.request("POST", "/api/v1/posts/"+post.ID+"/comments", suite.bob, gin.H{
		"content": "top level",
	})
	suite.Equal(http.StatusCreated, w.Code)
	var top models.Comment
	suite.decode(w, &top)

	w = suite.request("POST", "/api/v1/posts/"+post.ID+"/comments", suite.alice, gin.H{
		"content":   "a reply",
		"parent_id": top.ID,
	})
	suite.Equal(http.StatusCreated, w.Code)
	var reply models.Comment
	suite.decode(w, &reply)

	// Replying to a reply is rejected.
	w = suite.request("POST", "/api/v1/posts/"+post.ID+"/comments", suite.bob, gin.H{
		"content":   "too deep",
		"parent_id": reply.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request("GET", "/api/v1/posts/"+post.ID+"/comments", suite.bob, nil)
	suite.Equal(http.StatusOK, w.Code)

	var env struct {
		Count   int64            `json:"count"`
		Results []models.Comment `json:"results"`
	}
	suite.decode(w, &env)
	suite.Equal(int64(1), env.Count, "only top-level comments counted")
	suite.Require().Len(env.Results, 1)
	suite.Require().Len(env.Results[0].Replies, 1)
	suite.Equal("a reply", env.Results[0].Replies[0].Content)
	suite.Equal("alice", env.Results[0].Replies[0].AuthorUsername)
}

func (suite *HandlersTestSuite) TestCommentParentMustMatchPost() {
	p1 := suite.createPost(suite.alice, "one", models.PrivacyPublic)
	p2 := suite.createPost(suite.alice, "two", models.PrivacyPublic)

	w := suite.request("POST", "/api/v1/posts/"+p1.ID+"/comments", suite.bob, gin.H{
		"content": "on p1",
	})
	suite.Equal(http.StatusCreated, w.Code)
	var parent models.Comment
	suite.decode(w, &parent)

	w = suite.request("POST", "/api/v1/posts/"+p2.ID+"/comments", suite.bob, gin.H{
		"content":   "wrong post",
		"parent_id": parent.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// --- follows ---

func (suite *HandlersTestSuite) TestSelfFollowRejected() {
	w := suite.request("POST", "/api/v1/users/"+suite.alice.ID+"/follow", suite.alice, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestFollowToggleAndLists() {
	suite.followViaAPI(suite.alice, suite.bob)

	w := suite.request("GET", "/api/v1/users/"+suite.bob.ID+"/followers", suite.bob, nil)
	suite.Equal(http.StatusOK, w.Code)
	var env struct {
		Count   int64         `json:"count"`
		Results []models.User `json:"results"`
	}
	suite.decode(w, &env)
	suite.Equal(int64(1), env.Count)
	suite.Require().Len(env.Results, 1)
	suite.Equal("alice", env.Results[0].Username)

	w = suite.request("GET", "/api/v1/users/"+suite.alice.ID+"/following", suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.decode(w, &env)
	suite.Equal(int64(1), env.Count)

	// Toggle off.
	w = suite.request("POST", "/api/v1/users/"+suite.bob.ID+"/follow", suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/users/"+suite.bob.ID+"/followers", suite.bob, nil)
	suite.decode(w, &env)
	suite.Equal(int64(0), env.Count)
}

// --- users ---

func (suite *HandlersTestSuite) TestListUsersAdminOnly() {
	w := suite.request("GET", "/api/v1/users", suite.alice, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request("GET", "/api/v1/users", suite.admin, nil)
	suite.Equal(http.StatusOK, w.Code)

	var env struct {
		Count int64 `json:"count"`
	}
	suite.decode(w, &env)
	suite.Equal(int64(3), env.Count)
}

func (suite *HandlersTestSuite) TestGetMe() {
	w := suite.request("GET", "/api/v1/users/me", suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)

	var me models.User
	suite.decode(w, &me)
	suite.Equal(suite.alice.ID, me.ID)
	suite.NotContains(w.Body.String(), "password_hash")
}

// --- feeds over HTTP ---

func (suite *HandlersTestSuite) TestNewsfeedScenario() {
	suite.followViaAPI(suite.alice, suite.bob)

	suite.createPost(suite.bob, "Hello", models.PrivacyPublic)
	suite.createPost(suite.bob, "Secret", models.PrivacyPrivate)

	w := suite.request("GET", "/api/v1/newsfeed", suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)

	var env struct {
		Count   int64         `json:"count"`
		Results []models.Post `json:"results"`
	}
	suite.decode(w, &env)
	suite.Equal(int64(1), env.Count)
	suite.Require().Len(env.Results, 1)
	suite.Equal("Hello", env.Results[0].Content)
}

func (suite *HandlersTestSuite) TestFeedCachedThenInvalidatedByPost() {
	suite.followViaAPI(suite.alice, suite.bob)
	suite.createPost(suite.bob, "first", models.PrivacyPublic)

	w1 := suite.request("GET", "/api/v1/newsfeed", suite.alice, nil)
	suite.Equal(http.StatusOK, w1.Code)

	w2 := suite.request("GET", "/api/v1/newsfeed", suite.alice, nil)
	suite.Equal(w1.Body.String(), w2.Body.String(), "cached page must be byte-identical")

	// A new post by a followed author must reach the follower's next read.
	suite.createPost(suite.bob, "second", models.PrivacyPublic)

	w3 := suite.request("GET", "/api/v1/newsfeed", suite.alice, nil)
	var env struct {
		Count int64 `json:"count"`
	}
	suite.decode(w3, &env)
	suite.Equal(int64(2), env.Count)
}

func (suite *HandlersTestSuite) TestFeedPaginationEnvelope() {
	for i := 0; i < 15; i++ {
		suite.createPost(suite.bob, fmt.Sprintf("post-%02d", i), models.PrivacyPublic)
	}

	w := suite.request("GET", "/api/v1/feed?page=1&page_size=10", suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)

	var env struct {
		Count       int64         `json:"count"`
		Next        *string       `json:"next"`
		Previous    *string       `json:"previous"`
		CurrentPage int           `json:"current_page"`
		TotalPages  int           `json:"total_pages"`
		Results     []models.Post `json:"results"`
	}
	suite.decode(w, &env)
	suite.Equal(int64(15), env.Count)
	suite.Equal(2, env.TotalPages)
	suite.Equal(1, env.CurrentPage)
	suite.Len(env.Results, 10)
	suite.NotNil(env.Next)
	suite.Nil(env.Previous)

	w = suite.request("GET", "/api/v1/feed?page=2&page_size=10", suite.alice, nil)
	suite.decode(w, &env)
	suite.Len(env.Results, 5)
	suite.Nil(env.Next)
	suite.NotNil(env.Previous)
}

func (suite *HandlersTestSuite) TestFeedMalformedPaginationClamps() {
	suite.createPost(suite.bob, "only", models.PrivacyPublic)

	w := suite.request("GET", "/api/v1/feed?page=banana&page_size=-3", suite.alice, nil)
	suite.Equal(http.StatusOK, w.Code)

	var env struct {
		CurrentPage int           `json:"current_page"`
		Results     []models.Post `json:"results"`
	}
	suite.decode(w, &env)
	suite.Equal(1, env.CurrentPage)
	suite.Len(env.Results, 1)
}
