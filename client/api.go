package client

import (
	"context"
	"io"
	"net/http"
	"net/url"

	models "github.com/phillip/lifedrop-go/models"
)

type TokenResponse struct {
	Token      string `json:"token"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Registered bool   `json:"registered"`
}

type RoleStatus struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

type RegisterInput struct {
	Name       string `json:"name"`
	BloodGroup string `json:"blood_group"`
	Division   string `json:"division,omitempty"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

type RequestInput struct {
	RecipientName string `json:"recipient_name,omitempty"`
	Division      string `json:"division,omitempty"`
	District      string `json:"district,omitempty"`
	Upazila       string `json:"upazila,omitempty"`
	HospitalName  string `json:"hospital_name,omitempty"`
	Address       string `json:"address,omitempty"`
	BloodGroup    string `json:"blood_group,omitempty"`
	DonationDate  string `json:"donation_date,omitempty"`
	DonationTime  string `json:"donation_time,omitempty"`
	Message       string `json:"message,omitempty"`
}

type BlogInput struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type DonorSearch struct {
	BloodGroup string
	District   string
	Upazila    string
	Page       int
	Limit      int
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	ID           string `json:"id"`
}

type LikeResponse struct {
	ID    string `json:"id"`
	Liked bool   `json:"liked"`
	Likes int    `json:"likes"`
}

type FundingTotal struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// ---------------- auth & users ----------------

func (c *Client) ExchangeToken(ctx context.Context, idToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/jwt", nil, map[string]string{"id_token": idToken}, &out)
	return &out, err
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodPost, "/users", nil, in, &out)
	return &out, err
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &out)
	return &out, err
}

func (c *Client) Role(ctx context.Context) (*RoleStatus, error) {
	var out RoleStatus
	err := c.do(ctx, http.MethodGet, "/users/role", nil, nil, &out)
	return &out, err
}

func (c *Client) UpdateProfile(ctx context.Context, in RegisterInput) (*models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodPatch, "/users/me", nil, in, &out)
	return &out, err
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) (*models.Page[models.User], error) {
	var out models.Page[models.User]
	err := c.do(ctx, http.MethodGet, "/all-users", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) SetUserRole(ctx context.Context, email, role string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(email)+"/role", nil, map[string]string{"role": role}, nil)
}

func (c *Client) SetUserStatus(ctx context.Context, email, status string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(email)+"/status", nil, map[string]string{"status": status}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(email), nil, nil, nil)
}

func (c *Client) SearchDonors(ctx context.Context, s DonorSearch) (*models.Page[models.User], error) {
	q := ListOptions{Page: s.Page, Limit: s.Limit}.values()
	if s.BloodGroup != "" {
		q.Set("blood_group", s.BloodGroup)
	}
	if s.District != "" {
		q.Set("district", s.District)
	}
	if s.Upazila != "" {
		q.Set("upazila", s.Upazila)
	}
	var out models.Page[models.User]
	err := c.do(ctx, http.MethodGet, "/search-donors", q, nil, &out)
	return &out, err
}

// ---------------- donation requests ----------------

func (c *Client) CreateRequest(ctx context.Context, in RequestInput) (*models.DonationRequest, error) {
	var out models.DonationRequest
	err := c.do(ctx, http.MethodPost, "/create-request", nil, in, &out)
	return &out, err
}

func (c *Client) PendingRequests(ctx context.Context, opts ListOptions) (*models.Page[models.DonationRequest], error) {
	var out models.Page[models.DonationRequest]
	err := c.do(ctx, http.MethodGet, "/donation-requests", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) GetRequest(ctx context.Context, id string) (*models.DonationRequest, error) {
	var out models.DonationRequest
	err := c.do(ctx, http.MethodGet, "/donation-requests/"+url.PathEscape(id), nil, nil, &out)
	return &out, err
}

func (c *Client) MyRequests(ctx context.Context, opts ListOptions) (*models.Page[models.DonationRequest], error) {
	var out models.Page[models.DonationRequest]
	err := c.do(ctx, http.MethodGet, "/my-donation-requests", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) RecentRequests(ctx context.Context) ([]models.DonationRequest, error) {
	var out []models.DonationRequest
	err := c.do(ctx, http.MethodGet, "/my-donation-requests/recent", nil, nil, &out)
	return out, err
}

func (c *Client) AllRequests(ctx context.Context, opts ListOptions) (*models.Page[models.DonationRequest], error) {
	var out models.Page[models.DonationRequest]
	err := c.do(ctx, http.MethodGet, "/all-donation-requests", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) UpdateRequest(ctx context.Context, id string, in RequestInput) (*models.DonationRequest, error) {
	var out struct {
		Request models.DonationRequest `json:"request"`
	}
	err := c.do(ctx, http.MethodPatch, "/donation-requests/"+url.PathEscape(id), nil, in, &out)
	return &out.Request, err
}

// Donate claims a pending request for the caller.
func (c *Client) Donate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/donation-requests/"+url.PathEscape(id)+"/donate", nil, nil, nil)
}

func (c *Client) SetRequestStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, "/donation-requests/"+url.PathEscape(id)+"/status", nil, map[string]string{"status": status}, nil)
}

func (c *Client) SetEmergency(ctx context.Context, id string, emergency bool) error {
	return c.do(ctx, http.MethodPatch, "/donation-requests/"+url.PathEscape(id)+"/emergency", nil, map[string]bool{"emergency": emergency}, nil)
}

func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/donation-requests/"+url.PathEscape(id), nil, nil, nil)
}

// ---------------- blogs ----------------

func (c *Client) CreateBlog(ctx context.Context, in BlogInput) (*models.Blog, error) {
	var out models.Blog
	err := c.do(ctx, http.MethodPost, "/blogs", nil, in, &out)
	return &out, err
}

// CreateBlogWithThumbnail sends the blog as multipart with an image file.
func (c *Client) CreateBlogWithThumbnail(ctx context.Context, in BlogInput, filename string, thumbnail io.Reader) (*models.Blog, error) {
	var out models.Blog
	fields := map[string]string{"title": in.Title, "content": in.Content}
	err := c.upload(ctx, "/blogs", "thumbnail", filename, thumbnail, fields, &out)
	return &out, err
}

func (c *Client) PublishedBlogs(ctx context.Context, opts ListOptions) (*models.Page[models.Blog], error) {
	var out models.Page[models.Blog]
	err := c.do(ctx, http.MethodGet, "/blogs", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) GetBlog(ctx context.Context, id string) (*models.Blog, error) {
	var out models.Blog
	err := c.do(ctx, http.MethodGet, "/blogs/"+url.PathEscape(id), nil, nil, &out)
	return &out, err
}

func (c *Client) ManagedBlogs(ctx context.Context, opts ListOptions) (*models.Page[models.Blog], error) {
	var out models.Page[models.Blog]
	err := c.do(ctx, http.MethodGet, "/manage-blogs", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) SetBlogStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, "/blogs/"+url.PathEscape(id)+"/status", nil, map[string]string{"status": status}, nil)
}

func (c *Client) ToggleLike(ctx context.Context, id string) (*LikeResponse, error) {
	var out LikeResponse
	err := c.do(ctx, http.MethodPatch, "/blogs/"+url.PathEscape(id)+"/like", nil, nil, &out)
	return &out, err
}

func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/blogs/"+url.PathEscape(id), nil, nil, nil)
}

// ---------------- volunteers ----------------

func (c *Client) ApplyVolunteer(ctx context.Context, phone, motivation string) (*models.VolunteerApplication, error) {
	var out models.VolunteerApplication
	err := c.do(ctx, http.MethodPost, "/volunteer-applications", nil,
		map[string]string{"phone": phone, "motivation": motivation}, &out)
	return &out, err
}

func (c *Client) VolunteerApplications(ctx context.Context, opts ListOptions) (*models.Page[models.VolunteerApplication], error) {
	var out models.Page[models.VolunteerApplication]
	err := c.do(ctx, http.MethodGet, "/volunteer-applications", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) ReviewVolunteer(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, "/volunteer-applications/"+url.PathEscape(id)+"/status", nil, map[string]string{"status": status}, nil)
}

// ---------------- funding ----------------

func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*PaymentIntentResponse, error) {
	var out PaymentIntentResponse
	body := map[string]interface{}{"amount": amount}
	if currency != "" {
		body["currency"] = currency
	}
	err := c.do(ctx, http.MethodPost, "/create-payment-intent", nil, body, &out)
	return &out, err
}

func (c *Client) ConfirmFunding(ctx context.Context, paymentIntentID string) (*models.FundingPayment, error) {
	var out models.FundingPayment
	err := c.do(ctx, http.MethodPost, "/funding", nil, map[string]string{"payment_intent_id": paymentIntentID}, &out)
	return &out, err
}

func (c *Client) Funding(ctx context.Context, opts ListOptions) (*models.Page[models.FundingPayment], error) {
	var out models.Page[models.FundingPayment]
	err := c.do(ctx, http.MethodGet, "/funding", opts.values(), nil, &out)
	return &out, err
}

func (c *Client) FundingTotal(ctx context.Context) (*FundingTotal, error) {
	var out FundingTotal
	err := c.do(ctx, http.MethodGet, "/funding/total", nil, nil, &out)
	return &out, err
}

// ---------------- dashboards, notifications, misc ----------------

func (c *Client) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	var out models.AdminStats
	err := c.do(ctx, http.MethodGet, "/admin-stats", nil, nil, &out)
	return &out, err
}

func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	var q url.Values
	if unreadOnly {
		q = url.Values{"unread": {"true"}}
	}
	var out []models.Notification
	err := c.do(ctx, http.MethodGet, "/notifications", q, nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

func (c *Client) Contact(ctx context.Context, name, email, message string) error {
	return c.do(ctx, http.MethodPost, "/contact", nil,
		map[string]string{"name": name, "email": email, "message": message}, nil)
}

func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.upload(ctx, "/upload", "image", filename, image, nil, &out)
	return out.URL, err
}
