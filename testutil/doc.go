// Package testutil provides an in-process fake of the Ribbit REST platform
// for tests.
//
// The platform is a gin engine behind httptest. It verifies every request
// signature with the same rules the real platform applies and records what
// it accepted:
//
//	p := testutil.NewPlatform(t, "ck", "sk")
//	p.Handle(http.MethodGet, "/users/:id", func(c *gin.Context) {
//	    c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
//	})
//	store := credentials.NewStore(p.URL())
//	store.SetApplicationCredentials("ck", "sk", "", "", "")
//
// Requests with a bad signature receive 401 and never reach the handler.
package testutil
