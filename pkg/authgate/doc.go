/*
Package authgate coordinates logins against hosts protected by a central
login service (CAS style single sign-on).

# Overview

Protected hosts do not expose a "am I logged in?" endpoint. Instead, an
unauthenticated request is redirected to the identity provider's login page as
part of the ordinary HTTP exchange. The Gateway therefore decides whether a
login is needed by looking at the host the response was finally served from,
and it remembers, per host, when the last login succeeded:

	gw, err := authgate.New(authgate.Options{
		Login:       transport,            // LoginExecutor
		Requests:    transport,            // RequestExecutor
		Forms:       uis.NewFormBuilder(), // FormBuilder
		Credentials: credentialService,    // CredentialSource
		Policy:      authgate.IdentityProviderHost("uis.fudan.edu.cn"),
	})

	body, err := gw.Fetch(ctx, "https://ecard.fudan.edu.cn/epay/myepay/index")

# Login protocol

Authenticate runs the following steps for a request to host H:

 1. If H logged in less than two hours ago, the request runs directly on the
    concurrent lane.
 2. Otherwise, non-GET requests and requests with a ManualLoginURL log in
    first, inside H's exclusive lane. The login state is checked again inside
    the lane so that queued callers do not log in twice.
 3. The request is then probed inside H's exclusive lane. If it is not
    diverted to the identity provider, its body is returned. If it is, the
    login form is completed with the stored credentials and submitted; a
    submission that lands on the identity provider again fails with
    ErrLoginFailed.
 4. If the probe found H already logged in, the request runs on the
    concurrent lane. Being redirected to the identity provider at this point
    is reported as ErrLoginFailed.

Nothing is retried. Errors are ErrMalformedRequest, ErrCredentialsNotFound,
ErrLoginFailed, or a *NetworkError from the executors.

# Lanes

Coordinator provides the two lanes used above. Exclusive work for one key runs
strictly in submission order; different keys are independent. A caller whose
context ends stops waiting, but work it already submitted still runs.
*/
package authgate
