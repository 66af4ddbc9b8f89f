package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"cafeteria/internal/domain"
	applog "cafeteria/internal/log"
	"cafeteria/internal/services"
	"cafeteria/internal/validate"
)

type OrderHandler struct {
	Flow   *services.OrderWorkflow
	Orders *services.OrderService
	Carts  CartStore
}

// orderForm echoes the edit form back when validation fails.
type orderForm struct {
	ID         string
	Timestamp  string
	TotalPrice string
	Version    string
}

func (h *OrderHandler) ensureSID(c *fiber.Ctx) string {
	// the cookie value aliases the request buffer; stores may keep the key
	sid := utils.CopyString(c.Cookies("sid"))
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

func pathOrderID(c *fiber.Ctx) (domain.OrderID, bool) {
	n, ok := validate.ID(c.Params("id"))
	return domain.OrderID(n), ok
}

func (h *OrderHandler) Index(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "orders_index", fiber.Map{"Orders": orders})
}

func (h *OrderHandler) Details(c *fiber.Ctx) error {
	id, ok := pathOrderID(c)
	if !ok {
		return badRequest(c, "Invalid order id")
	}
	d, err := h.Orders.Detail(c.UserContext(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return err
	}
	return render(c, "order_details", fiber.Map{"Order": d.Order, "Items": d.Items})
}

// CreateForm starts a fresh cart for the session and shows the picker.
func (h *OrderHandler) CreateForm(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid := h.ensureSID(c)
	cart := h.Flow.StartSession()
	if err := h.Carts.Save(ctx, sid, cart); err != nil {
		return err
	}
	v, err := h.Flow.View(ctx, cart)
	if err != nil {
		return err
	}
	return render(c, "order_create", fiber.Map{"View": v})
}

func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid := h.ensureSID(c)
	cart, err := h.Carts.Load(ctx, sid)
	if err != nil {
		return err
	}

	pid, okID := validate.ID(c.FormValue("productId"))
	qty, okQty := validate.Qty(c.FormValue("quantity"))
	if !okID || !okQty {
		applog.Security(c, "validation.fail", map[string]any{"form": "order.item"})
		v, err := h.Flow.View(ctx, cart)
		if err != nil {
			return err
		}
		c.Status(fiber.StatusBadRequest)
		return render(c, "order_create", fiber.Map{"View": v, "Err": "Pick a product and a quantity of at least 1."})
	}

	v, err := h.Flow.AddToCart(ctx, cart, domain.ProductID(pid), qty)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return notFound(c, "This product is not available")
	case errors.Is(err, domain.ErrInvalidInput):
		return badRequest(c, "Invalid quantity")
	case err != nil:
		return err
	}
	if v.Message == "" {
		if err := h.Carts.Save(ctx, sid, v.Cart); err != nil {
			return err
		}
		applog.Info(c, "cart.set", map[string]any{"product_id": pid, "quantity": qty})
	}
	return render(c, "order_create", fiber.Map{"View": v})
}

// Create commits the session cart. An empty cart just goes back to the list.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sid := h.ensureSID(c)
	cart, err := h.Carts.Load(ctx, sid)
	if err != nil {
		return err
	}

	id, err := h.Flow.Commit(ctx, cart)
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		applog.Info(c, "order.commit.short", map[string]any{"lines": cart.Len()})
		v, verr := h.Flow.View(ctx, cart)
		if verr != nil {
			return verr
		}
		v.Message = services.MsgInsufficientStock
		c.Status(fiber.StatusConflict)
		return render(c, "order_create", fiber.Map{"View": v})
	case errors.Is(err, domain.ErrNotFound):
		return notFound(c, "A product in this order is no longer available")
	case err != nil:
		return err
	}
	if id == 0 {
		return c.Redirect("/orders")
	}

	if err := h.Carts.Clear(ctx, sid); err != nil {
		applog.Error(c, "cart.clear.fail", err, map[string]any{"order_id": int64(id)})
	}
	applog.Audit(c, "order.commit", map[string]any{"order_id": int64(id), "lines": cart.Len()})
	return c.Redirect("/orders")
}

func (h *OrderHandler) EditForm(c *fiber.Ctx) error {
	id, ok := pathOrderID(c)
	if !ok {
		return badRequest(c, "Invalid order id")
	}
	o, err := h.Orders.Get(c.UserContext(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return err
	}
	return render(c, "order_edit", fiber.Map{"PathID": o.ID, "Form": formFromOrder(o)})
}

func (h *OrderHandler) Edit(c *fiber.Ctx) error {
	pathID, ok := pathOrderID(c)
	if !ok {
		return badRequest(c, "Invalid order id")
	}
	f := orderForm{
		ID:         c.FormValue("id"),
		Timestamp:  c.FormValue("timestamp"),
		TotalPrice: c.FormValue("totalPrice"),
		Version:    c.FormValue("version"),
	}
	formID, okID := validate.ID(f.ID)
	ts, okTS := validate.Timestamp(f.Timestamp)
	total, okTotal := validate.Price(f.TotalPrice)
	ver, okVer := validate.Version(f.Version)
	if !okID || !okTS || !okTotal || !okVer {
		applog.Security(c, "validation.fail", map[string]any{"form": "order.edit", "order_id": int64(pathID)})
		c.Status(fiber.StatusBadRequest)
		return render(c, "order_edit", fiber.Map{
			"PathID": pathID,
			"Form":   f,
			"Err":    "Enter a valid date and time and a non-negative total with at most two decimals.",
		})
	}

	o, err := h.Orders.Update(c.UserContext(), pathID, services.OrderUpdate{
		ID:         domain.OrderID(formID),
		Timestamp:  ts,
		TotalPrice: total,
		Version:    ver,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return err
	}
	applog.Audit(c, "order.update", map[string]any{
		"order_id": int64(o.ID),
		"total":    o.TotalPrice.String(),
		"version":  o.Version,
	})
	return c.Redirect("/orders")
}

func (h *OrderHandler) DeleteForm(c *fiber.Ctx) error {
	id, ok := pathOrderID(c)
	if !ok {
		return badRequest(c, "Invalid order id")
	}
	d, err := h.Orders.Detail(c.UserContext(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return err
	}
	return render(c, "order_delete", fiber.Map{"Order": d.Order, "Items": d.Items})
}

// Delete removes the order. Unknown ids fall through to the list.
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathOrderID(c)
	if !ok {
		return badRequest(c, "Invalid order id")
	}
	deleted, err := h.Orders.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	if deleted {
		applog.Audit(c, "order.delete", map[string]any{"order_id": int64(id)})
	}
	return c.Redirect("/orders")
}

func formFromOrder(o domain.Order) orderForm {
	return orderForm{
		ID:         o.ID.String(),
		Timestamp:  o.Timestamp.Local().Format(validate.TimestampLayout),
		TotalPrice: o.TotalPrice.StringFixed(2),
		Version:    strconv.FormatInt(o.Version, 10),
	}
}
