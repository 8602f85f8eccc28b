// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

// Package restaurateur serves the staff JSON API: open orders with their
// restaurant rankings, the product availability matrix and order intake.
package restaurateur

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/aqwarius2003/star-burger-dockerizations/dispatch"
	"github.com/aqwarius2003/star-burger-dockerizations/foodcart"
	"github.com/aqwarius2003/star-burger-dockerizations/places"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	repo       foodcart.Repository
	dispatcher *dispatch.Dispatcher
	places     places.Cache
}

func NewServer(repo foodcart.Repository, dispatcher *dispatch.Dispatcher, cache places.Cache) *Server {
	return &Server{repo: repo, dispatcher: dispatcher, places: cache}
}

// Router returns the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	api.GET("/orders", s.listOrders)
	api.POST("/orders/:id/restaurant", s.assignRestaurant)
	api.POST("/order", s.registerOrder)
	api.GET("/products", s.listProducts)
	api.GET("/restaurants", s.listRestaurants)

	return r
}

func (s *Server) Run(addr string) error {
	log.Infof("Listening on http://%s", addr)

	return s.Router().Run(addr)
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		log.WithFields(log.Fields{
			"method": ctx.Request.Method,
			"path":   ctx.Request.URL.Path,
			"status": ctx.Writer.Status(),
		}).Debug("Request served")
	}
}

type OrderView struct {
	ID            int64                  `json:"id"`
	Status        foodcart.OrderStatus   `json:"status"`
	StatusLabel   string                 `json:"status_label"`
	PaymentMethod foodcart.PaymentMethod `json:"payment_method"`
	TotalPrice    string                 `json:"total_price"`
	Firstname     string                 `json:"firstname"`
	Lastname      string                 `json:"lastname"`
	Phonenumber   string                 `json:"phonenumber"`
	Address       string                 `json:"address"`
	Comments      string                 `json:"comments"`
	Restaurant    *string                `json:"restaurant"`
	Restaurants   []dispatch.Entry       `json:"restaurants"`
}

func (s *Server) listOrders(ctx *gin.Context) {
	batch, err := s.dispatcher.ProcessOpenOrders(ctx.Request.Context())
	if err != nil {
		log.WithError(err).Error("Ranking open orders failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank orders"})

		return
	}

	restaurantNames := make(map[int64]string, len(batch.Restaurants))
	for _, r := range batch.Restaurants {
		restaurantNames[r.ID] = r.Name
	}

	views := make([]OrderView, 0, len(batch.Orders))

	for i, order := range batch.Orders {
		view := OrderView{
			ID:            order.ID,
			Status:        order.Status,
			StatusLabel:   order.Status.Label(),
			PaymentMethod: order.PaymentMethod,
			TotalPrice:    order.TotalPrice().StringFixed(2),
			Firstname:     order.Firstname,
			Lastname:      order.Lastname,
			Phonenumber:   order.Phonenumber,
			Address:       order.Address,
			Comments:      order.Comments,
			Restaurants:   batch.Rankings[i].Ranking,
		}

		if order.RestaurantID != nil {
			if name, ok := restaurantNames[*order.RestaurantID]; ok {
				view.Restaurant = &name
			}
		}

		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Status.Rank() != views[j].Status.Rank() {
			return views[i].Status.Rank() < views[j].Status.Rank()
		}

		return views[i].ID < views[j].ID
	})

	ctx.JSON(http.StatusOK, views)
}

type orderLine struct {
	Product  int64 `json:"product"  binding:"required"`
	Quantity int   `json:"quantity" binding:"required"`
}

type orderRequest struct {
	Firstname     string      `json:"firstname"`
	Lastname      string      `json:"lastname"`
	Phonenumber   string      `json:"phonenumber"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	Comments      string      `json:"comments"`
	Products      []orderLine `json:"products"`
}

func (s *Server) registerOrder(ctx *gin.Context) {
	var req orderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	order := &foodcart.Order{
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		Phonenumber:   req.Phonenumber,
		Address:       req.Address,
		PaymentMethod: foodcart.PaymentMethod(req.PaymentMethod),
		Comments:      req.Comments,
	}
	for _, line := range req.Products {
		order.Items = append(order.Items, foodcart.OrderItem{ProductID: line.Product, Quantity: line.Quantity})
	}

	if err := s.repo.CreateOrder(ctx.Request.Context(), order); err != nil {
		switch {
		case errors.Is(err, foodcart.ErrInvalidOrder),
			errors.Is(err, foodcart.ErrProductNotFound),
			errors.Is(err, foodcart.ErrInvalidPaymentMethod):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.WithError(err).Error("Registering order failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register order"})
		}

		return
	}

	if err := s.places.Register(ctx.Request.Context(), order.Address); err != nil {
		log.WithError(err).WithField("address", order.Address).Warn("Registering order address failed")
	}

	log.WithField("order_id", order.ID).Info("Order registered")
	ctx.JSON(http.StatusCreated, order)
}

type assignRequest struct {
	RestaurantID int64 `json:"restaurant_id" binding:"required"`
}

func (s *Server) assignRestaurant(ctx *gin.Context) {
	orderID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})

		return
	}

	var req assignRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := s.repo.AssignRestaurant(ctx.Request.Context(), orderID, req.RestaurantID); err != nil {
		switch {
		case errors.Is(err, foodcart.ErrOrderNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, foodcart.ErrRestaurantNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign restaurant"})
		}

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order_id": orderID, "restaurant_id": req.RestaurantID})
}

type restaurantRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type availabilityView struct {
	Restaurants []restaurantRef                `json:"restaurants"`
	Products    []foodcart.ProductAvailability `json:"products"`
}

func (s *Server) listProducts(ctx *gin.Context) {
	restaurants, err := s.repo.ListRestaurants(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list restaurants"})

		return
	}

	products, err := s.repo.ListProducts(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})

		return
	}

	view := availabilityView{
		Restaurants: make([]restaurantRef, 0, len(restaurants)),
		Products:    foodcart.AvailabilityMatrix(restaurants, products),
	}
	for _, r := range restaurants {
		view.Restaurants = append(view.Restaurants, restaurantRef{ID: r.ID, Name: r.Name})
	}

	ctx.JSON(http.StatusOK, view)
}

func (s *Server) listRestaurants(ctx *gin.Context) {
	restaurants, err := s.repo.ListRestaurants(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list restaurants"})

		return
	}

	for _, r := range restaurants {
		r.Menu = nil
	}

	ctx.JSON(http.StatusOK, restaurants)
}
