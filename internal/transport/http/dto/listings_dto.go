package dto

import "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"

type CategoriesResponse struct {
	Items []model.Category `json:"items"`
}

type OpportunitiesResponse struct {
	Items []model.Opportunity `json:"items"`
}

type PostsResponse struct {
	Items []model.Post `json:"items"`
}

type ListingStatusRequest struct {
	Status string `json:"status"`
}

type DeleteResponse struct {
	OK bool `json:"ok"`
}
