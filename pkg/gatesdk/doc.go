/*
Package gatesdk is a Go client for the campusgate HTTP API.

	client := gatesdk.NewClient("http://localhost:8080").WithToken(accessToken)

	// Fetch a page behind the campus login
	page, err := client.Get(ctx, "https://jwfw.fudan.edu.cn/eams/home.action")

	// POST through the gateway; it logs in before submitting
	resp, err := client.Fetch(ctx, gatesdk.FetchRequest{
		URL:    "https://jwfw.fudan.edu.cn/eams/stdExamTable!examTable.action",
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: []byte("semester.id=425"),
	})

Errors returned by the server are *APIError values; use IsCode to match them:

	if gatesdk.IsCode(err, gatesdk.ErrorCodeCredentialsMissing) {
		// configure credentials first
	}
*/
package gatesdk
